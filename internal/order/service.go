package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/smartbasket/internal/user"
)

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

type UserReader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetOrdersByStatus(ctx context.Context, status OrderStatus) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) (*Order, error)
}

type service struct {
	orderRepo Repository
	users     UserReader
	// strict enables the allowedTransitions state machine; otherwise any
	// non-empty status is accepted.
	strict bool
}

func NewService(orderRepo Repository, users UserReader, strict bool) Service {
	return &service{
		orderRepo: orderRepo,
		users:     users,
		strict:    strict,
	}
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*Order, error) {
	if in.TotalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			log.Warn().Stringer("user_id", userID).Msg("service: attempt to create order for unknown user")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("service: failed to check user: %w", err)
	}

	o := &Order{
		UserID:          userID,
		Status:          StatusPending,
		TotalAmount:     in.TotalAmount,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
	}

	if err := s.orderRepo.CreateFromCart(ctx, o); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", userID).
		Str("total_amount", o.TotalAmount.StringFixed(2)).
		Int("items", len(o.Items)).
		Msg("Service: Order created successfully")
	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}

		log.Error().Err(err).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) GetOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) GetOrdersByStatus(ctx context.Context, status OrderStatus) ([]Order, error) {
	status = normalizeStatus(status)
	if status == "" {
		return nil, ErrInvalidStatus
	}

	orders, err := s.orderRepo.ListByStatus(ctx, status)
	if err != nil {
		log.Error().Err(err).Stringer("status", status).Msg("service: failed to fetch orders by status in repository")
		return nil, fmt.Errorf("service: failed to fetch orders by status: %w", err)
	}

	return orders, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) (*Order, error) {
	newStatus = normalizeStatus(newStatus)
	if newStatus == "" {
		return nil, ErrInvalidStatus
	}

	var guard StatusGuard
	if s.strict {
		guard = func(current OrderStatus) error {
			return checkTransition(orderID, current, newStatus)
		}
	}

	o, err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus, guard)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("new_status", o.Status).Msg("service: order status updated successfully")
	return o, nil
}

// normalizeStatus trims surrounding whitespace. Writes and queries both go
// through it so a stored status is found by the string it was set with.
func normalizeStatus(s OrderStatus) OrderStatus {
	return OrderStatus(strings.TrimSpace(string(s)))
}

func checkTransition(orderID uuid.UUID, current, next OrderStatus) error {
	if current == next {
		log.Info().Stringer("order_id", orderID).Stringer("status", next).Msg("service: order status is already the same, no update needed")
		return nil
	}

	transitions, ok := allowedTransitions[current]
	if !ok || !transitions[next] {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current).
			Stringer("new_status", next).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current, next)
	}

	return nil
}
