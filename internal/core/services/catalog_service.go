package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// catalogService manages the products and locations that stock records may
// reference. Movements and reservations against unregistered IDs are refused
// at the storage layer, so registration here is a precondition for any stock.
type catalogService struct {
	catalogRepo portsrepo.CatalogRepositoryFacade
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(catalogRepo portsrepo.CatalogRepositoryFacade) portssvc.CatalogSvcFacade {
	return &catalogService{catalogRepo: catalogRepo}
}

// Ensure catalogService implements the portssvc.CatalogSvcFacade interface
var _ portssvc.CatalogSvcFacade = (*catalogService)(nil)

// CreateProduct registers a new product under the tenant.
func (s *catalogService) CreateProduct(ctx context.Context, tenantID string, req dto.CreateProductRequest, creatorUserID string) (*domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	product := domain.Product{
		ProductID: uuid.NewString(),
		TenantID:  tenantID,
		SKU:       req.SKU,
		Name:      req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.catalogRepo.SaveProduct(ctx, product); err != nil {
		logger.Error("Failed to save product", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	logger.Info("Product created successfully", slog.String("product_id", product.ProductID), slog.String("sku", product.SKU))
	return &product, nil
}

// GetProductByID retrieves a specific product, scoped to the tenant.
func (s *catalogService) GetProductByID(ctx context.Context, tenantID string, productID string) (*domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	product, err := s.catalogRepo.FindProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find product by ID", slog.String("error", err.Error()), slog.String("product_id", productID))
		}
		return nil, err
	}

	if product.TenantID != tenantID {
		logger.Warn("Product found but belongs to different tenant", slog.String("product_id", productID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	return product, nil
}

// ListProducts retrieves the tenant's products.
func (s *catalogService) ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	products, err := s.catalogRepo.ListProducts(ctx, tenantID)
	if err != nil {
		logger.Error("Failed to list products", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// CreateLocation registers a new storage location under the tenant.
func (s *catalogService) CreateLocation(ctx context.Context, tenantID string, req dto.CreateLocationRequest, creatorUserID string) (*domain.Location, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	location := domain.Location{
		LocationID:  uuid.NewString(),
		TenantID:    tenantID,
		WarehouseID: req.WarehouseID,
		Name:        req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.catalogRepo.SaveLocation(ctx, location); err != nil {
		logger.Error("Failed to save location", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save location: %w", err)
	}

	logger.Info("Location created successfully", slog.String("location_id", location.LocationID), slog.String("warehouse_id", location.WarehouseID))
	return &location, nil
}

// GetLocationByID retrieves a specific location, scoped to the tenant.
func (s *catalogService) GetLocationByID(ctx context.Context, tenantID string, locationID string) (*domain.Location, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	location, err := s.catalogRepo.FindLocationByID(ctx, locationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find location by ID", slog.String("error", err.Error()), slog.String("location_id", locationID))
		}
		return nil, err
	}

	if location.TenantID != tenantID {
		logger.Warn("Location found but belongs to different tenant", slog.String("location_id", locationID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	return location, nil
}

// ListLocations retrieves the tenant's locations, optionally by warehouse.
func (s *catalogService) ListLocations(ctx context.Context, tenantID string, warehouseID *string) ([]domain.Location, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	locations, err := s.catalogRepo.ListLocations(ctx, tenantID, warehouseID)
	if err != nil {
		logger.Error("Failed to list locations", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve locations: %w", err)
	}
	return locations, nil
}
