package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrPlatformNotFound = errors.New("platform not found")
	ErrPlatformExists   = errors.New("platform with this name already exists")
	ErrInvalidPlatform  = errors.New("invalid platform")
)

// Platform defaults, applied when a saved platform leaves them unset.
var (
	DefaultBaseDeliveryFee       = decimal.RequireFromString("25.00")
	DefaultFreeDeliveryThreshold = decimal.RequireFromString("200.00")
)

const DefaultAvgDeliveryMinutes = 15

type Product struct {
	ID        uuid.UUID
	Name      string
	Brand     string
	Category  string
	Unit      string
	Price     decimal.Decimal
	ImageURL  string
	InStock   bool
	CreatedAt time.Time
}

type Platform struct {
	ID                    uuid.UUID
	Name                  string
	LogoURL               string
	BaseDeliveryFee       decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	AvgDeliveryMinutes    int
	WebsiteURL            string
	CreatedAt             time.Time
}

// ProductFilter selects products. At most one criterion is applied:
// Search wins over Category, which wins over Brand.
type ProductFilter struct {
	Search   string
	Category string
	Brand    string
}

func (f ProductFilter) normalize() ProductFilter {
	switch {
	case strings.TrimSpace(f.Search) != "":
		return ProductFilter{Search: strings.TrimSpace(f.Search)}
	case strings.TrimSpace(f.Category) != "":
		return ProductFilter{Category: strings.TrimSpace(f.Category)}
	case strings.TrimSpace(f.Brand) != "":
		return ProductFilter{Brand: strings.TrimSpace(f.Brand)}
	default:
		return ProductFilter{}
	}
}
