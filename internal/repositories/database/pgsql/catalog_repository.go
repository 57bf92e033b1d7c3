package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	"github.com/finstok/finstok_backend/internal/models"
	"github.com/finstok/finstok_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCatalogRepository struct {
	BaseRepository
}

// newPgxCatalogRepository creates a new repository for product and location
// data.
func newPgxCatalogRepository(pool *pgxpool.Pool) portsrepo.CatalogRepositoryFacade {
	return &PgxCatalogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCatalogRepository implements portsrepo.CatalogRepositoryFacade
var _ portsrepo.CatalogRepositoryFacade = (*PgxCatalogRepository)(nil)

const productColumns = `product_id, tenant_id, sku, name, created_at, created_by, last_updated_at, last_updated_by`

const locationColumns = `location_id, tenant_id, warehouse_id, name, created_at, created_by, last_updated_at, last_updated_by`

func scanProductRow(row pgx.Row) (*models.Product, error) {
	var m models.Product
	err := row.Scan(
		&m.ProductID,
		&m.TenantID,
		&m.SKU,
		&m.Name,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanLocationRow(row pgx.Row) (*models.Location, error) {
	var m models.Location
	err := row.Scan(
		&m.LocationID,
		&m.TenantID,
		&m.WarehouseID,
		&m.Name,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveProduct inserts a new product.
func (r *PgxCatalogRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	modelProd := mapping.ToModelProduct(product)

	query := `
		INSERT INTO products (product_id, tenant_id, sku, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err := r.Pool.Exec(ctx, query,
		modelProd.ProductID,
		modelProd.TenantID,
		modelProd.SKU,
		modelProd.Name,
		modelProd.CreatedAt,
		modelProd.CreatedBy,
		modelProd.LastUpdatedAt,
		modelProd.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "products_tenant_sku_key" {
				return fmt.Errorf("%w: SKU %s", apperrors.ErrDuplicateCode, modelProd.SKU)
			}
			return fmt.Errorf("%w: product with ID %s already exists", apperrors.ErrDuplicate, modelProd.ProductID)
		}
		return fmt.Errorf("failed to save product %s: %w", modelProd.ProductID, err)
	}
	return nil
}

// FindProductByID retrieves a product by its ID.
func (r *PgxCatalogRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1;`

	m, err := scanProductRow(r.Pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID %s: %w", productID, err)
	}

	domainProd := mapping.ToDomainProduct(*m)
	return &domainProd, nil
}

// ListProducts retrieves the tenant's products ordered by SKU.
func (r *PgxCatalogRepository) ListProducts(ctx context.Context, tenantID string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 ORDER BY sku;`

	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		m, scanErr := scanProductRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan product row for tenant %s: %w", tenantID, scanErr)
		}
		products = append(products, *m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating product rows for tenant %s: %w", tenantID, rows.Err())
	}

	return mapping.ToDomainProductSlice(products), nil
}

// SaveLocation inserts a new location.
func (r *PgxCatalogRepository) SaveLocation(ctx context.Context, location domain.Location) error {
	modelLoc := mapping.ToModelLocation(location)

	query := `
		INSERT INTO locations (location_id, tenant_id, warehouse_id, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err := r.Pool.Exec(ctx, query,
		modelLoc.LocationID,
		modelLoc.TenantID,
		modelLoc.WarehouseID,
		modelLoc.Name,
		modelLoc.CreatedAt,
		modelLoc.CreatedBy,
		modelLoc.LastUpdatedAt,
		modelLoc.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: location with ID %s already exists", apperrors.ErrDuplicate, modelLoc.LocationID)
		}
		return fmt.Errorf("failed to save location %s: %w", modelLoc.LocationID, err)
	}
	return nil
}

// FindLocationByID retrieves a location by its ID.
func (r *PgxCatalogRepository) FindLocationByID(ctx context.Context, locationID string) (*domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE location_id = $1;`

	m, err := scanLocationRow(r.Pool.QueryRow(ctx, query, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find location by ID %s: %w", locationID, err)
	}

	domainLoc := mapping.ToDomainLocation(*m)
	return &domainLoc, nil
}

// ListLocations retrieves the tenant's locations, optionally filtered by
// warehouse, ordered by name.
func (r *PgxCatalogRepository) ListLocations(ctx context.Context, tenantID string, warehouseID *string) ([]domain.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	if warehouseID != nil {
		query += ` AND warehouse_id = $2`
		args = append(args, *warehouseID)
	}
	query += ` ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		m, scanErr := scanLocationRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan location row for tenant %s: %w", tenantID, scanErr)
		}
		locations = append(locations, *m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating location rows for tenant %s: %w", tenantID, rows.Err())
	}

	return mapping.ToDomainLocationSlice(locations), nil
}
