package order

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string {
	return string(s)
}

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidAmount           = errors.New("total amount cannot be negative")
	ErrInvalidStatus           = errors.New("status is required")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// Item is a cart line frozen into an order at creation time.
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Price       decimal.Decimal
	CreatedAt   time.Time
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Status          OrderStatus
	Items           []Item
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateOrderInput is the caller-supplied part of a new order. TotalAmount is
// stored as given and is not checked against the cart.
type CreateOrderInput struct {
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
}
