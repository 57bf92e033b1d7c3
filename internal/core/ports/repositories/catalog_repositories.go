package repositories

import (
	"context"

	"github.com/finstok/finstok_backend/internal/core/domain"
)

// CatalogReader defines read operations for product and location data.
type CatalogReader interface {
	// FindProductByID retrieves a specific product by its identifier.
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// ListProducts retrieves the tenant's products ordered by SKU.
	ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error)

	// FindLocationByID retrieves a specific location by its identifier.
	FindLocationByID(ctx context.Context, locationID string) (*domain.Location, error)

	// ListLocations retrieves the tenant's locations, optionally filtered by
	// warehouse, ordered by name.
	ListLocations(ctx context.Context, tenantID string, warehouseID *string) ([]domain.Location, error)
}

// CatalogWriter defines write operations for product and location data.
type CatalogWriter interface {
	// SaveProduct persists a new product.
	SaveProduct(ctx context.Context, product domain.Product) error

	// SaveLocation persists a new location.
	SaveLocation(ctx context.Context, location domain.Location) error
}

// CatalogRepositoryFacade combines all catalog-related repository interfaces.
type CatalogRepositoryFacade interface {
	CatalogReader
	CatalogWriter
}
