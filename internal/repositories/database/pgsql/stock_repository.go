package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	"github.com/finstok/finstok_backend/internal/models"
	"github.com/finstok/finstok_backend/internal/utils/mapping"
	"github.com/finstok/finstok_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxStockRepository struct {
	BaseRepository
}

// newPgxStockRepository creates a new repository for stock, movement, and
// reservation data.
func newPgxStockRepository(pool *pgxpool.Pool) portsrepo.StockRepositoryWithTx {
	return &PgxStockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxStockRepository implements portsrepo.StockRepositoryWithTx
var _ portsrepo.StockRepositoryWithTx = (*PgxStockRepository)(nil)

const stockColumns = `tenant_id, product_id, location_id, on_hand, reserved, created_at, created_by, last_updated_at, last_updated_by`

func scanStockRow(row pgx.Row) (*models.StockRecord, error) {
	var m models.StockRecord
	err := row.Scan(
		&m.TenantID,
		&m.ProductID,
		&m.LocationID,
		&m.OnHand,
		&m.Reserved,
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

// FindStockRecord retrieves the cached stock pair for one (product, location).
func (r *PgxStockRepository) FindStockRecord(ctx context.Context, tenantID, productID, locationID string) (*domain.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3;`

	m, err := scanStockRow(r.Pool.QueryRow(ctx, query, tenantID, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stock record for product %s at %s: %w", productID, locationID, err)
	}

	domainRec := mapping.ToDomainStockRecord(*m)
	return &domainRec, nil
}

// ListStock retrieves stock records joined with product and location metadata.
func (r *PgxStockRepository) ListStock(ctx context.Context, tenantID string, filter portsrepo.StockFilter) ([]domain.StockDetail, error) {
	query := `
		SELECT s.tenant_id, s.product_id, s.location_id, s.on_hand, s.reserved,
		       s.created_at, s.created_by, s.last_updated_at, s.last_updated_by,
		       p.sku, p.name, l.warehouse_id, l.name
		FROM stock_records s
		JOIN products p ON s.product_id = p.product_id
		JOIN locations l ON s.location_id = l.location_id
		WHERE s.tenant_id = $1
	`
	args := []interface{}{tenantID}

	if filter.LocationID != nil {
		args = append(args, *filter.LocationID)
		query += fmt.Sprintf(` AND s.location_id = $%d`, len(args))
	} else if filter.WarehouseID != nil {
		args = append(args, *filter.WarehouseID)
		query += fmt.Sprintf(` AND l.warehouse_id = $%d`, len(args))
	}
	query += ` ORDER BY p.sku, l.name;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	details := []domain.StockDetail{}
	for rows.Next() {
		var m models.StockRecord
		var d domain.StockDetail
		scanErr := rows.Scan(
			&m.TenantID,
			&m.ProductID,
			&m.LocationID,
			&m.OnHand,
			&m.Reserved,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&d.ProductSKU,
			&d.ProductName,
			&d.WarehouseID,
			&d.LocationName,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan stock row for tenant %s: %w", tenantID, scanErr)
		}
		d.StockRecord = mapping.ToDomainStockRecord(m)
		details = append(details, d)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating stock rows for tenant %s: %w", tenantID, rows.Err())
	}

	return details, nil
}

const sumMovementsQuery = `
	SELECT COALESCE(SUM(
		CASE WHEN to_location_id = $3 THEN quantity ELSE 0 END -
		CASE WHEN from_location_id = $3 THEN quantity ELSE 0 END
	), 0)
	FROM stock_movements
	WHERE tenant_id = $1 AND product_id = $2
	  AND (to_location_id = $3 OR from_location_id = $3);
`

// SumMovements replays the movement log for one (product, location): the sum
// of inbound quantities minus outbound quantities. This is the ground truth
// the cached on-hand must agree with.
func (r *PgxStockRepository) SumMovements(ctx context.Context, tenantID, productID, locationID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, sumMovementsQuery, tenantID, productID, locationID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum movements for product %s at %s: %w", productID, locationID, err)
	}
	return sum, nil
}

// SumMovementsInTx is the same replay inside the caller's transaction. Repair
// runs this after locking the stock row, so no movement can commit between
// the recompute and the overwrite.
func (r *PgxStockRepository) SumMovementsInTx(ctx context.Context, tx pgx.Tx, tenantID, productID, locationID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := tx.QueryRow(ctx, sumMovementsQuery, tenantID, productID, locationID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum movements for product %s at %s: %w", productID, locationID, err)
	}
	return sum, nil
}

// FindStockForUpdate selects the stock row and locks it for the duration of
// the transaction. A missing row is created at zero first, so every
// (product, location) mutation path contends on the same lock. The seed only
// fires for a product and location registered under the tenant; an unknown
// reference is reported as not found instead of becoming a phantom position.
func (r *PgxStockRepository) FindStockForUpdate(ctx context.Context, tx pgx.Tx, tenantID, productID, locationID string) (*domain.StockRecord, error) {
	insertQuery := `
		INSERT INTO stock_records (tenant_id, product_id, location_id, on_hand, reserved, created_at, created_by, last_updated_at, last_updated_by)
		SELECT $1, $2, $3, 0, 0, NOW(), 'system', NOW(), 'system'
		WHERE EXISTS (SELECT 1 FROM products WHERE product_id = $2 AND tenant_id = $1)
		  AND EXISTS (SELECT 1 FROM locations WHERE location_id = $3 AND tenant_id = $1)
		ON CONFLICT (tenant_id, product_id, location_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, insertQuery, tenantID, productID, locationID); err != nil {
		return nil, fmt.Errorf("failed to ensure stock row for product %s at %s: %w", productID, locationID, err)
	}

	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3 FOR UPDATE;`

	m, err := scanStockRow(tx.QueryRow(ctx, query, tenantID, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s or location %s is not registered", apperrors.ErrNotFound, productID, locationID)
		}
		return nil, fmt.Errorf("failed to lock stock row for product %s at %s: %w", productID, locationID, err)
	}

	domainRec := mapping.ToDomainStockRecord(*m)
	return &domainRec, nil
}

// UpdateStockInTx overwrites the cached pair for one (product, location).
// Must run against a row previously locked via FindStockForUpdate.
func (r *PgxStockRepository) UpdateStockInTx(ctx context.Context, tx pgx.Tx, record domain.StockRecord, userID string, now time.Time) error {
	query := `
		UPDATE stock_records
		SET on_hand = $4, reserved = $5, last_updated_at = $6, last_updated_by = $7
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3;
	`

	cmdTag, err := tx.Exec(ctx, query,
		record.TenantID,
		record.ProductID,
		record.LocationID,
		record.OnHand,
		record.Reserved,
		now,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock for product %s at %s: %w", record.ProductID, record.LocationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveMovementInTx appends a movement. Movement rows are never updated or
// deleted; corrections are new movements.
func (r *PgxStockRepository) SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.Movement) error {
	modelMov := mapping.ToModelMovement(movement)

	query := `
		INSERT INTO stock_movements (movement_id, tenant_id, product_id, from_location_id, to_location_id, quantity, reference, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	_, err := tx.Exec(ctx, query,
		modelMov.MovementID,
		modelMov.TenantID,
		modelMov.ProductID,
		modelMov.FromLocationID,
		modelMov.ToLocationID,
		modelMov.Quantity,
		modelMov.Reference,
		modelMov.CreatedAt,
		modelMov.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save movement %s: %w", modelMov.MovementID, err)
	}
	return nil
}

// SaveReservationInTx persists a new reservation.
func (r *PgxStockRepository) SaveReservationInTx(ctx context.Context, tx pgx.Tx, reservation domain.Reservation) error {
	modelRes := mapping.ToModelReservation(reservation)

	query := `
		INSERT INTO stock_reservations (reservation_id, tenant_id, product_id, location_id, quantity, reference, released, released_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`

	_, err := tx.Exec(ctx, query,
		modelRes.ReservationID,
		modelRes.TenantID,
		modelRes.ProductID,
		modelRes.LocationID,
		modelRes.Quantity,
		modelRes.Reference,
		modelRes.Released,
		modelRes.ReleasedAt,
		modelRes.CreatedAt,
		modelRes.CreatedBy,
		modelRes.LastUpdatedAt,
		modelRes.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save reservation %s: %w", modelRes.ReservationID, err)
	}
	return nil
}

// FindReservationForUpdate selects a reservation and locks its row.
func (r *PgxStockRepository) FindReservationForUpdate(ctx context.Context, tx pgx.Tx, reservationID string) (*domain.Reservation, error) {
	query := `
		SELECT reservation_id, tenant_id, product_id, location_id, quantity, reference, released, released_at, created_at, created_by, last_updated_at, last_updated_by
		FROM stock_reservations
		WHERE reservation_id = $1
		FOR UPDATE;
	`

	var m models.Reservation
	err := tx.QueryRow(ctx, query, reservationID).Scan(
		&m.ReservationID,
		&m.TenantID,
		&m.ProductID,
		&m.LocationID,
		&m.Quantity,
		&m.Reference,
		&m.Released,
		&m.ReleasedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock reservation %s: %w", reservationID, err)
	}

	domainRes := mapping.ToDomainReservation(m)
	return &domainRes, nil
}

// MarkReservationReleasedInTx flags a reservation as released. The released
// guard makes a double release a zero-row update.
func (r *PgxStockRepository) MarkReservationReleasedInTx(ctx context.Context, tx pgx.Tx, reservationID string, userID string, now time.Time) error {
	query := `
		UPDATE stock_reservations
		SET released = TRUE, released_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE reservation_id = $1 AND released = FALSE;
	`

	cmdTag, err := tx.Exec(ctx, query, reservationID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to release reservation %s: %w", reservationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation %s", apperrors.ErrAlreadyReleased, reservationID)
	}
	return nil
}

// ListMovements retrieves a paginated movement feed, newest first, optionally
// filtered by product.
func (r *PgxStockRepository) ListMovements(ctx context.Context, tenantID string, productID *string, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT movement_id, tenant_id, product_id, from_location_id, to_location_id, quantity, reference, created_at, created_by
		FROM stock_movements
	`
	filterClause := `WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if productID != nil {
		args = append(args, *productID)
		filterClause += fmt.Sprintf(` AND product_id = $%d`, len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, decodeErr := pagination.DecodeDateBasedToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt)
		filterClause += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}

	orderByClause := `ORDER BY created_at DESC`
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query movements for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	movements := make([]models.Movement, 0, fetchLimit)
	for rows.Next() {
		var m models.Movement
		scanErr := rows.Scan(
			&m.MovementID,
			&m.TenantID,
			&m.ProductID,
			&m.FromLocationID,
			&m.ToLocationID,
			&m.Quantity,
			&m.Reference,
			&m.CreatedAt,
			&m.CreatedBy,
		)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan movement row for tenant %s: %w", tenantID, scanErr)
		}
		movements = append(movements, m)
	}

	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating movement rows for tenant %s: %w", tenantID, rows.Err())
	}

	var nextTokenVal *string
	results := movements
	if len(movements) > limit {
		lastMov := movements[limit-1]
		token := pagination.EncodeDateBasedToken(lastMov.CreatedAt)
		nextTokenVal = &token
		results = movements[:limit]
	}

	return mapping.ToDomainMovementSlice(results), nextTokenVal, nil
}
