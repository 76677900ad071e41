package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/smartbasket/internal/catalog"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

type MockPlatformRepository struct {
	mock.Mock
}

func (m *MockPlatformRepository) List(ctx context.Context) ([]catalog.Platform, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Platform), args.Error(1)
}

func (m *MockPlatformRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Platform, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Platform), args.Error(1)
}

func (m *MockPlatformRepository) Create(ctx context.Context, p *catalog.Platform) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPlatformRepository) Update(ctx context.Context, p *catalog.Platform) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPlatformRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newService() (catalog.Service, *MockProductRepository, *MockPlatformRepository) {
	products := new(MockProductRepository)
	platforms := new(MockPlatformRepository)
	return catalog.NewService(products, platforms), products, platforms
}

func TestCatalogService_ListProducts_FilterPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		filter catalog.ProductFilter
		want   catalog.ProductFilter
	}{
		{
			name:   "search wins over everything",
			filter: catalog.ProductFilter{Search: " milk ", Category: "Dairy", Brand: "Amul"},
			want:   catalog.ProductFilter{Search: "milk"},
		},
		{
			name:   "category wins over brand",
			filter: catalog.ProductFilter{Category: "Dairy", Brand: "Amul"},
			want:   catalog.ProductFilter{Category: "Dairy"},
		},
		{
			name:   "brand only",
			filter: catalog.ProductFilter{Search: "  ", Brand: "Amul"},
			want:   catalog.ProductFilter{Brand: "Amul"},
		},
		{
			name:   "no filter",
			filter: catalog.ProductFilter{},
			want:   catalog.ProductFilter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, products, _ := newService()
			products.On("List", mock.Anything, tt.want).Return([]catalog.Product{}, nil).Once()

			got, err := svc.ListProducts(context.Background(), tt.filter)
			require.NoError(t, err)
			require.NotNil(t, got)
			products.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetProductByID(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	t.Run("found", func(t *testing.T) {
		svc, products, _ := newService()
		want := &catalog.Product{ID: id, Name: "Tomato", Price: decimal.RequireFromString("30.00")}
		products.On("GetByID", mock.Anything, id).Return(want, nil).Once()

		got, err := svc.GetProductByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("not_found", func(t *testing.T) {
		svc, products, _ := newService()
		products.On("GetByID", mock.Anything, id).Return(nil, catalog.ErrProductNotFound).Once()

		_, err := svc.GetProductByID(context.Background(), id)
		require.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestCatalogService_ListPlatforms_Error(t *testing.T) {
	svc, _, platforms := newService()
	boom := errors.New("db down")
	platforms.On("List", mock.Anything).Return(nil, boom).Once()

	_, err := svc.ListPlatforms(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestCatalogService_SavePlatform_CreateAppliesDefaults(t *testing.T) {
	svc, _, platforms := newService()

	platforms.On("Create", mock.Anything, mock.MatchedBy(func(p *catalog.Platform) bool {
		return p.Name == "FreshCart" &&
			p.BaseDeliveryFee.Equal(catalog.DefaultBaseDeliveryFee) &&
			p.FreeDeliveryThreshold.Equal(catalog.DefaultFreeDeliveryThreshold) &&
			p.AvgDeliveryMinutes == catalog.DefaultAvgDeliveryMinutes
	})).Return(nil).Once()

	got, err := svc.SavePlatform(context.Background(), &catalog.Platform{
		Name:       " FreshCart ",
		WebsiteURL: "https://freshcart.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "FreshCart", got.Name)
	platforms.AssertExpectations(t)
	platforms.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCatalogService_SavePlatform_UpdateKeepsExplicitValues(t *testing.T) {
	svc, _, platforms := newService()

	id := uuid.Must(uuid.NewV4())
	fee := decimal.RequireFromString("19.50")
	platforms.On("Update", mock.Anything, mock.MatchedBy(func(p *catalog.Platform) bool {
		return p.ID == id && p.BaseDeliveryFee.Equal(fee) && p.AvgDeliveryMinutes == 8
	})).Return(nil).Once()

	_, err := svc.SavePlatform(context.Background(), &catalog.Platform{
		ID:                 id,
		Name:               "Zepto",
		WebsiteURL:         "https://www.zeptonow.com",
		BaseDeliveryFee:    fee,
		AvgDeliveryMinutes: 8,
	})
	require.NoError(t, err)
	platforms.AssertExpectations(t)
}

func TestCatalogService_SavePlatform_Invalid(t *testing.T) {
	cases := map[string]*catalog.Platform{
		"missing name":     {WebsiteURL: "https://x.example"},
		"missing website":  {Name: "X"},
		"negative fee":     {Name: "X", WebsiteURL: "https://x.example", BaseDeliveryFee: decimal.NewFromInt(-1)},
		"negative minutes": {Name: "X", WebsiteURL: "https://x.example", AvgDeliveryMinutes: -5},
	}

	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			svc, _, platforms := newService()

			_, err := svc.SavePlatform(context.Background(), p)
			require.ErrorIs(t, err, catalog.ErrInvalidPlatform)
			platforms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCatalogService_SavePlatform_Conflict(t *testing.T) {
	svc, _, platforms := newService()
	platforms.On("Create", mock.Anything, mock.Anything).Return(catalog.ErrPlatformExists).Once()

	_, err := svc.SavePlatform(context.Background(), &catalog.Platform{Name: "Blinkit", WebsiteURL: "https://blinkit.com"})
	require.ErrorIs(t, err, catalog.ErrPlatformExists)
}

func TestCatalogService_DeletePlatform(t *testing.T) {
	svc, _, platforms := newService()
	id := uuid.Must(uuid.NewV4())
	platforms.On("Delete", mock.Anything, id).Return(nil).Twice()

	require.NoError(t, svc.DeletePlatform(context.Background(), id))
	require.NoError(t, svc.DeletePlatform(context.Background(), id))
	platforms.AssertExpectations(t)
}
