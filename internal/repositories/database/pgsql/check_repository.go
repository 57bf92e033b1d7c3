package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	"github.com/finstok/finstok_backend/internal/models"
	"github.com/finstok/finstok_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCheckRepository struct {
	BaseRepository
}

// newPgxCheckRepository creates a new repository for check data.
func newPgxCheckRepository(pool *pgxpool.Pool) portsrepo.CheckRepositoryWithTx {
	return &PgxCheckRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCheckRepository implements portsrepo.CheckRepositoryWithTx
var _ portsrepo.CheckRepositoryWithTx = (*PgxCheckRepository)(nil)

const checkColumns = `check_id, tenant_id, check_type, counterparty_account_id, due_date, bank_name, serial_number, amount, currency_code, status, settlement_group_id, created_at, created_by, last_updated_at, last_updated_by`

func scanCheckRow(row pgx.Row) (*models.Check, error) {
	var m models.Check
	err := row.Scan(
		&m.CheckID,
		&m.TenantID,
		&m.CheckType,
		&m.CounterpartyAccountID,
		&m.DueDate,
		&m.BankName,
		&m.SerialNumber,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.SettlementGroupID,
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

// SaveCheck inserts a new check in the portfolio.
func (r *PgxCheckRepository) SaveCheck(ctx context.Context, check domain.Check) error {
	modelCheck := mapping.ToModelCheck(check)

	query := `
		INSERT INTO checks (check_id, tenant_id, check_type, counterparty_account_id, due_date, bank_name, serial_number, amount, currency_code, status, settlement_group_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`

	_, err := r.Pool.Exec(ctx, query,
		modelCheck.CheckID,
		modelCheck.TenantID,
		modelCheck.CheckType,
		modelCheck.CounterpartyAccountID,
		modelCheck.DueDate,
		modelCheck.BankName,
		modelCheck.SerialNumber,
		modelCheck.Amount,
		modelCheck.CurrencyCode,
		modelCheck.Status,
		modelCheck.SettlementGroupID,
		modelCheck.CreatedAt,
		modelCheck.CreatedBy,
		modelCheck.LastUpdatedAt,
		modelCheck.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: check with ID %s already exists", apperrors.ErrDuplicate, modelCheck.CheckID)
		}
		return fmt.Errorf("failed to save check %s: %w", modelCheck.CheckID, err)
	}
	return nil
}

// FindCheckByID retrieves a check by its ID.
func (r *PgxCheckRepository) FindCheckByID(ctx context.Context, checkID string) (*domain.Check, error) {
	query := `SELECT ` + checkColumns + ` FROM checks WHERE check_id = $1;`

	m, err := scanCheckRow(r.Pool.QueryRow(ctx, query, checkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find check by ID %s: %w", checkID, err)
	}

	domainCheck := mapping.ToDomainCheck(*m)
	return &domainCheck, nil
}

// ListChecks retrieves checks of a tenant, optionally filtered by status and
// type, ordered by due date.
func (r *PgxCheckRepository) ListChecks(ctx context.Context, tenantID string, status *domain.CheckStatus, checkType *domain.CheckType) ([]domain.Check, error) {
	query := `SELECT ` + checkColumns + ` FROM checks WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if checkType != nil {
		args = append(args, *checkType)
		query += fmt.Sprintf(` AND check_type = $%d`, len(args))
	}
	query += ` ORDER BY due_date, created_at;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query checks for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	checks := []models.Check{}
	for rows.Next() {
		m, scanErr := scanCheckRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan check row for tenant %s: %w", tenantID, scanErr)
		}
		checks = append(checks, *m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating check rows for tenant %s: %w", tenantID, rows.Err())
	}

	return mapping.ToDomainCheckSlice(checks), nil
}

// TransitionCheckStatusInTx moves a check between lifecycle states within a
// transaction. The WHERE clause guards on the expected current status, so a
// concurrent transition makes this a zero-row update and the whole
// transaction fails with ErrConflict instead of double-settling.
func (r *PgxCheckRepository) TransitionCheckStatusInTx(ctx context.Context, tx pgx.Tx, checkID string, from, to domain.CheckStatus, settlementGroupID *string, userID string, now time.Time) error {
	query := `
		UPDATE checks
		SET status = $3, settlement_group_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE check_id = $1 AND status = $2;
	`

	cmdTag, err := tx.Exec(ctx, query, checkID, from, to, settlementGroupID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to transition check "+checkID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		// The check either doesn't exist or left the expected status.
		var exists bool
		if scanErr := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM checks WHERE check_id = $1);`, checkID).Scan(&exists); scanErr != nil {
			return apperrors.NewAppError(500, "failed to verify check after transition attempt "+checkID, scanErr)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: check %s is no longer %s", apperrors.ErrConflict, checkID, from)
	}

	return nil
}

// TransitionCheckStatus is the non-transactional form used for transitions
// that do not post to the ledger.
func (r *PgxCheckRepository) TransitionCheckStatus(ctx context.Context, checkID string, from, to domain.CheckStatus, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.TransitionCheckStatusInTx(ctx, tx, checkID, from, to, nil, userID, now); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}
