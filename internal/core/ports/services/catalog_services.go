package services

import (
	"context"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/dto"
)

// CatalogSvcFacade defines product and location registration. Stock can only
// be held against registered products and locations, so the catalog is the
// front door of the warehouse module.
type CatalogSvcFacade interface {
	// CreateProduct registers a new product. The SKU is unique per tenant.
	CreateProduct(ctx context.Context, tenantID string, req dto.CreateProductRequest, creatorUserID string) (*domain.Product, error)

	// GetProductByID retrieves a specific product, scoped to the tenant.
	GetProductByID(ctx context.Context, tenantID string, productID string) (*domain.Product, error)

	// ListProducts retrieves the tenant's products ordered by SKU.
	ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error)

	// CreateLocation registers a new location within a warehouse.
	CreateLocation(ctx context.Context, tenantID string, req dto.CreateLocationRequest, creatorUserID string) (*domain.Location, error)

	// GetLocationByID retrieves a specific location, scoped to the tenant.
	GetLocationByID(ctx context.Context, tenantID string, locationID string) (*domain.Location, error)

	// ListLocations retrieves the tenant's locations, optionally by warehouse.
	ListLocations(ctx context.Context, tenantID string, warehouseID *string) ([]domain.Location, error)
}
