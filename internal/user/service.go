package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	demoFullName    = "Demo User"
	demoPassword    = "demo_password"
	demoEmailDomain = "@smartbasket.app"
)

var (
	otpPattern  = regexp.MustCompile(`^\d{6}$`)
	nonDigitsRe = regexp.MustCompile(`\D`)
)

type Service interface {
	Register(ctx context.Context, email, password, fullName string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	LoginWithPhoneOTP(ctx context.Context, phone, otp string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to generate password hash")
		return nil, fmt.Errorf("service: internal error hashing password: %w", err)
	}

	u := &User{
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         RoleUser,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Str("email", u.Email).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to save user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Msg("service: user registered")
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Msg("service: failed to get user by email in repository")
		return nil, fmt.Errorf("service: failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Warn().Stringer("user_id", u.ID).Msg("service: password mismatch")
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// LoginWithPhoneOTP is the demo login: any six digit code is accepted, and an
// unknown phone number gets a fresh account.
func (s *service) LoginWithPhoneOTP(ctx context.Context, phone, otp string) (*User, error) {
	if !otpPattern.MatchString(otp) {
		return nil, ErrInvalidOTP
	}

	existing, err := s.repo.GetByPhone(ctx, phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Msg("service: failed to get user by phone in repository")
		return nil, fmt.Errorf("service: failed to get user by phone: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service: internal error hashing password: %w", err)
	}

	u := &User{
		Email:        nonDigitsRe.ReplaceAllString(phone, "") + demoEmailDomain,
		PasswordHash: string(hash),
		FullName:     demoFullName,
		Phone:        phone,
		Role:         RoleUser,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		// A concurrent first login for the same phone may have won the insert.
		if errors.Is(err, ErrPhoneExists) || errors.Is(err, ErrEmailExists) {
			if winner, getErr := s.repo.GetByPhone(ctx, phone); getErr == nil {
				return winner, nil
			}
		}
		log.Error().Err(err).Msg("service: failed to create phone user in repository")
		return nil, fmt.Errorf("service: failed to save phone user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Msg("service: demo phone user created")
	return u, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Msg("service: failed to get user by id in repository")
		return nil, fmt.Errorf("service: failed to get user by id '%s': %w", id, err)
	}

	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.FullName != "" {
		u.FullName = upd.FullName
	}
	if upd.Phone != "" {
		u.Phone = upd.Phone
	}
	if upd.Address != "" {
		u.Address = upd.Address
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPhoneExists) || errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to update user")
		return nil, fmt.Errorf("service: failed to update user by id '%s': %w", id, err)
	}

	return u, nil
}
