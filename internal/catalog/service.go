package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListPlatforms(ctx context.Context) ([]Platform, error)
	GetPlatformByID(ctx context.Context, id uuid.UUID) (*Platform, error)
	SavePlatform(ctx context.Context, p *Platform) (*Platform, error)
	DeletePlatform(ctx context.Context, id uuid.UUID) error
}

type service struct {
	products  ProductRepository
	platforms PlatformRepository
}

func NewService(products ProductRepository, platforms PlatformRepository) Service {
	return &service{products: products, platforms: platforms}
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := s.products.List(ctx, filter.normalize())
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products in repository")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to get product in repository")
		return nil, fmt.Errorf("service: failed to get product by id '%s': %w", id, err)
	}

	return p, nil
}

func (s *service) ListPlatforms(ctx context.Context) ([]Platform, error) {
	platforms, err := s.platforms.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list platforms in repository")
		return nil, fmt.Errorf("service: failed to list platforms: %w", err)
	}

	log.Debug().Int("count", len(platforms)).Msg("service: platforms listed")
	return platforms, nil
}

func (s *service) GetPlatformByID(ctx context.Context, id uuid.UUID) (*Platform, error) {
	p, err := s.platforms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPlatformNotFound) {
			log.Warn().Stringer("platform_id", id).Msg("service: platform not found")
			return nil, ErrPlatformNotFound
		}
		log.Error().Err(err).Stringer("platform_id", id).Msg("service: failed to get platform in repository")
		return nil, fmt.Errorf("service: failed to get platform by id '%s': %w", id, err)
	}

	return p, nil
}

// SavePlatform creates p when its ID is nil and updates it otherwise.
// Zero fees and minutes are treated as unset and replaced by the defaults.
func (s *service) SavePlatform(ctx context.Context, p *Platform) (*Platform, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.WebsiteURL = strings.TrimSpace(p.WebsiteURL)
	if p.Name == "" || p.WebsiteURL == "" {
		return nil, fmt.Errorf("%w: name and website url are required", ErrInvalidPlatform)
	}
	if p.BaseDeliveryFee.IsNegative() || p.FreeDeliveryThreshold.IsNegative() || p.AvgDeliveryMinutes < 0 {
		return nil, fmt.Errorf("%w: fees and delivery minutes cannot be negative", ErrInvalidPlatform)
	}

	if p.BaseDeliveryFee.IsZero() {
		p.BaseDeliveryFee = DefaultBaseDeliveryFee
	}
	if p.FreeDeliveryThreshold.IsZero() {
		p.FreeDeliveryThreshold = DefaultFreeDeliveryThreshold
	}
	if p.AvgDeliveryMinutes == 0 {
		p.AvgDeliveryMinutes = DefaultAvgDeliveryMinutes
	}

	var err error
	if p.ID == uuid.Nil {
		err = s.platforms.Create(ctx, p)
	} else {
		err = s.platforms.Update(ctx, p)
	}
	if err != nil {
		if errors.Is(err, ErrPlatformExists) || errors.Is(err, ErrPlatformNotFound) {
			return nil, err
		}
		log.Error().Err(err).Str("name", p.Name).Msg("service: failed to save platform in repository")
		return nil, fmt.Errorf("service: failed to save platform: %w", err)
	}

	log.Info().Stringer("platform_id", p.ID).Str("name", p.Name).Msg("service: platform saved")
	return p, nil
}

func (s *service) DeletePlatform(ctx context.Context, id uuid.UUID) error {
	if err := s.platforms.Delete(ctx, id); err != nil {
		log.Error().Err(err).Stringer("platform_id", id).Msg("service: failed to delete platform in repository")
		return fmt.Errorf("service: failed to delete platform: %w", err)
	}

	return nil
}
