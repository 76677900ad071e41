package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/smartbasket/internal/catalog"
	"github.com/vasiliy-maslov/smartbasket/internal/user"
)

type UserReader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type ProductReader interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]Line, error)
	AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Line, error)
	UpdateCartItem(ctx context.Context, lineID uuid.UUID, quantity int) (*UpdateResult, error)
	RemoveFromCart(ctx context.Context, lineID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	users    UserReader
	products ProductReader
}

func NewService(repo Repository, users UserReader, products ProductReader) Service {
	return &service{repo: repo, users: users, products: products}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to get cart in repository")
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}

	return lines, nil
}

func (s *service) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Line, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidQuantity, quantity)
	}
	if quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: must be at most %d, got %d", ErrInvalidQuantity, MaxQuantity, quantity)
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("service: failed to check user: %w", err)
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to check product: %w", err)
	}

	line, err := s.repo.Upsert(ctx, userID, productID, quantity, product.Price)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrInvalidQuantity) {
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", userID).Stringer("product_id", productID).Msg("service: failed to add to cart in repository")
		return nil, fmt.Errorf("service: failed to add to cart: %w", err)
	}

	log.Info().
		Stringer("user_id", userID).
		Stringer("product_id", productID).
		Int("added", quantity).
		Int("quantity", line.Quantity).
		Msg("service: cart line upserted")
	return line, nil
}

// UpdateCartItem overwrites the line quantity. Zero removes the line.
func (s *service) UpdateCartItem(ctx context.Context, lineID uuid.UUID, quantity int) (*UpdateResult, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: cannot be negative, got %d", ErrInvalidQuantity, quantity)
	}
	if quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: must be at most %d, got %d", ErrInvalidQuantity, MaxQuantity, quantity)
	}

	if quantity == 0 {
		deleted, err := s.repo.Delete(ctx, lineID)
		if err != nil {
			log.Error().Err(err).Stringer("line_id", lineID).Msg("service: failed to remove cart line in repository")
			return nil, fmt.Errorf("service: failed to update cart item: %w", err)
		}
		if !deleted {
			return nil, ErrCartItemNotFound
		}
		return &UpdateResult{Removed: true}, nil
	}

	line, err := s.repo.UpdateQuantity(ctx, lineID, quantity)
	if err != nil {
		if errors.Is(err, ErrCartItemNotFound) {
			return nil, ErrCartItemNotFound
		}
		if errors.Is(err, ErrInvalidQuantity) {
			return nil, err
		}
		log.Error().Err(err).Stringer("line_id", lineID).Msg("service: failed to update cart line in repository")
		return nil, fmt.Errorf("service: failed to update cart item: %w", err)
	}

	return &UpdateResult{Line: line}, nil
}

func (s *service) RemoveFromCart(ctx context.Context, lineID uuid.UUID) error {
	if _, err := s.repo.Delete(ctx, lineID); err != nil {
		log.Error().Err(err).Stringer("line_id", lineID).Msg("service: failed to remove cart line in repository")
		return fmt.Errorf("service: failed to remove from cart: %w", err)
	}
	return nil
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart in repository")
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return nil
}
