package cart

import (
	"errors"
	"math"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
)

// MaxQuantity is the largest quantity a cart line can hold (INTEGER column).
const MaxQuantity = math.MaxInt32

// Line is one product in a user's cart. Price is the product price at the
// moment the line was first created and is never refreshed.
type Line struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// UpdateResult is returned by UpdateCartItem. Line is nil when Removed is set.
type UpdateResult struct {
	Line    *Line
	Removed bool
}
