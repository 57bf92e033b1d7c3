package pgsql

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	"github.com/finstok/finstok_backend/internal/models"
	"github.com/finstok/finstok_backend/internal/utils/accounting"
	"github.com/finstok/finstok_backend/internal/utils/mapping"
	"github.com/finstok/finstok_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxPostingRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxPostingRepository creates a new repository for posting group and transaction data.
func newPgxPostingRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.PostingRepositoryWithTx {
	return &PgxPostingRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxPostingRepository implements portsrepo.PostingRepositoryWithTx
var _ portsrepo.PostingRepositoryWithTx = (*PgxPostingRepository)(nil)

// SavePostingGroup saves a group, updates cached account balances, and saves
// the transaction lines within a DB transaction. Serialization failures are
// retried with a fresh transaction.
func (r *PgxPostingRepository) SavePostingGroup(ctx context.Context, group domain.PostingGroup, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	return withTxRetry(ctx, func(ctx context.Context) error {
		tx, err := r.Begin(ctx)
		if err != nil {
			return err
		}
		defer r.Rollback(ctx, tx) // Ignored once committed

		if err := r.SavePostingGroupInTx(ctx, tx, group, transactions, balanceChanges); err != nil {
			return err
		}

		return r.Commit(ctx, tx)
	})
}

// SavePostingGroupInTx performs the posting write sequence on a caller-owned
// transaction: insert the group header, lock the touched accounts, apply the
// balance deltas, then batch-insert the lines with running balances.
func (r *PgxPostingRepository) SavePostingGroupInTx(ctx context.Context, tx pgx.Tx, group domain.PostingGroup, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	accountRepo := r.accountRepo

	now := group.CreatedAt // Use consistent time from the group
	userID := group.CreatedBy

	// 1. Insert the group header
	modelGroup := mapping.ToModelPostingGroup(group)
	groupQuery := `
		INSERT INTO posting_groups (
			group_id, tenant_id, entry_date, description, currency_code,
			document_type, document_id, status,
			original_group_id, reversing_group_id, amount,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, groupQuery,
		modelGroup.GroupID,
		modelGroup.TenantID,
		modelGroup.Date,
		modelGroup.Description,
		modelGroup.CurrencyCode,
		modelGroup.DocumentType,
		modelGroup.DocumentID,
		modelGroup.Status,
		modelGroup.OriginalGroupID,
		modelGroup.ReversingGroupID,
		modelGroup.Amount,
		modelGroup.CreatedAt,
		modelGroup.CreatedBy,
		modelGroup.LastUpdatedAt,
		modelGroup.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert posting group "+modelGroup.GroupID, err)
	}

	// 2. Lock accounts and get current balances
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}

	lockedAccounts, err := accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		// Error includes ErrNotFound if any account is missing
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}

	// 3. Update cached account balances
	if err := accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	// 4. Prepare and insert transaction lines with calculated running balances
	batch := &pgx.Batch{}
	txnQuery := `
		INSERT INTO transactions (transaction_id, group_id, tenant_id, account_id, amount, transaction_type, entry_date, description, running_balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	// Running balance per account starts from the balance captured under lock,
	// before this group's changes.
	currentRunningBalances := make(map[string]decimal.Decimal)
	for accID, lockedAcc := range lockedAccounts {
		currentRunningBalances[accID] = lockedAcc.Balance
	}

	// Sort by TransactionID for deterministic order
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].TransactionID < transactions[j].TransactionID
	})

	for _, txn := range transactions {
		modelTxn := mapping.ToModelTransaction(txn)
		modelTxn.CreatedAt = now
		modelTxn.LastUpdatedAt = now
		modelTxn.CreatedBy = userID
		modelTxn.LastUpdatedBy = userID

		accountID := txn.AccountID
		if _, ok := lockedAccounts[accountID]; !ok {
			// Should not happen, the locking step finds all accounts
			return apperrors.NewAppError(500, "internal error: locked account "+accountID+" not found during transaction processing", nil)
		}

		newRunningBalance := currentRunningBalances[accountID].Add(accounting.SignedAmount(txn))
		modelTxn.RunningBalance = newRunningBalance
		currentRunningBalances[accountID] = newRunningBalance

		batch.Queue(txnQuery,
			modelTxn.TransactionID,
			modelTxn.GroupID,
			modelTxn.TenantID,
			modelTxn.AccountID,
			modelTxn.Amount,
			modelTxn.Type,
			modelTxn.Date,
			modelTxn.Description,
			modelTxn.RunningBalance,
			modelTxn.CreatedAt,
			modelTxn.CreatedBy,
			modelTxn.LastUpdatedAt,
			modelTxn.LastUpdatedBy,
		)
	}

	// 5. Send the batch of transaction inserts
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute transaction batch for group "+modelGroup.GroupID, err)
	}

	return nil
}

const groupColumns = `group_id, tenant_id, entry_date, description, currency_code, document_type, document_id, status, original_group_id, reversing_group_id, amount, created_at, created_by, last_updated_at, last_updated_by`

func scanGroupRow(row pgx.Row) (*models.PostingGroup, error) {
	var m models.PostingGroup
	err := row.Scan(
		&m.GroupID,
		&m.TenantID,
		&m.Date,
		&m.Description,
		&m.CurrencyCode,
		&m.DocumentType,
		&m.DocumentID,
		&m.Status,
		&m.OriginalGroupID,
		&m.ReversingGroupID,
		&m.Amount,
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

// FindGroupByID retrieves a posting group by its ID.
func (r *PgxPostingRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.PostingGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM posting_groups WHERE group_id = $1;`

	m, err := scanGroupRow(r.Pool.QueryRow(ctx, query, groupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find posting group by ID "+groupID, err)
	}

	domainGroup := mapping.ToDomainPostingGroup(*m)
	return &domainGroup, nil
}

// ListGroupsByTenant retrieves a paginated list of posting groups for a tenant
// using token-based pagination.
func (r *PgxPostingRepository) ListGroupsByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversals bool) ([]domain.PostingGroup, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + groupColumns + ` FROM posting_groups`
	filterClause := `WHERE tenant_id = $1`
	if !includeReversals {
		filterClause += ` AND status != 'REVERSED' AND reversing_group_id IS NULL AND original_group_id IS NULL`
	}

	// Ordering must be stable. entry_date DESC with created_at DESC as the
	// tie-breaker matches the cursor encoding.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{tenantID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (entry_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + filterClause + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query posting groups for tenant "+tenantID, err)
	}
	defer rows.Close()

	modelGroups := make([]models.PostingGroup, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanGroupRow(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan posting group row for tenant "+tenantID, scanErr)
		}
		modelGroups = append(modelGroups, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating posting group rows for tenant "+tenantID, err)
	}

	// Determine the next token
	var nextTokenVal *string
	results := modelGroups
	if len(modelGroups) > limit {
		// The token points to the last item included in this response page.
		lastGroup := modelGroups[limit-1]
		newToken := pagination.EncodeToken(lastGroup.Date, lastGroup.CreatedAt)
		nextTokenVal = &newToken
		results = modelGroups[:limit]
	}

	domainGroups := make([]domain.PostingGroup, len(results))
	for i, m := range results {
		domainGroups[i] = mapping.ToDomainPostingGroup(m)
	}

	return domainGroups, nextTokenVal, nil
}

const updateGroupStatusQuery = `
	UPDATE posting_groups
	SET status = $2,
	    reversing_group_id = $3,
	    last_updated_at = $4,
	    last_updated_by = $5
	WHERE group_id = $1;
`

// UpdateGroupStatusAndLinks updates the status and reversal links of a group.
func (r *PgxPostingRepository) UpdateGroupStatusAndLinks(ctx context.Context, groupID string, status domain.PostingStatus, reversingGroupID *string, updatedByUserID string, updatedAt time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, updateGroupStatusQuery,
		groupID,
		status,
		reversingGroupID,
		updatedAt,
		updatedByUserID,
	)

	if err != nil {
		return apperrors.NewAppError(500, "failed to update posting group status/links for "+groupID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("posting group " + groupID + " not found for update")
	}

	return nil
}

// UpdateGroupStatusAndLinksInTx runs the status update on a caller-owned
// transaction.
func (r *PgxPostingRepository) UpdateGroupStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, groupID string, status domain.PostingStatus, reversingGroupID *string, updatedByUserID string, updatedAt time.Time) error {
	cmdTag, err := tx.Exec(ctx, updateGroupStatusQuery,
		groupID,
		status,
		reversingGroupID,
		updatedAt,
		updatedByUserID,
	)

	if err != nil {
		return apperrors.NewAppError(500, "failed to update posting group status/links for "+groupID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("posting group " + groupID + " not found for update")
	}

	return nil
}

const transactionColumns = `transaction_id, group_id, tenant_id, account_id, amount, transaction_type, entry_date, description, running_balance, created_at, created_by, last_updated_at, last_updated_by`

func scanTransactionRow(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.GroupID,
		&m.TenantID,
		&m.AccountID,
		&m.Amount,
		&m.Type,
		&m.Date,
		&m.Description,
		&m.RunningBalance,
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

// FindTransactionByID retrieves a single transaction line.
func (r *PgxPostingRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransactionRow(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(*m)
	return &domainTxn, nil
}

// FindTransactionsByGroupID retrieves all transactions associated with a group.
func (r *PgxPostingRepository) FindTransactionsByGroupID(ctx context.Context, groupID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE group_id = $1 ORDER BY transaction_id;`

	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for group "+groupID, err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		m, scanErr := scanTransactionRow(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row for group "+groupID, scanErr)
		}
		transactions = append(transactions, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows for group "+groupID, err)
	}

	return mapping.ToDomainTransactionSlice(transactions), nil
}

// ListTransactionsByAccountID retrieves a paginated account statement using
// token-based pagination. Reversed groups and their reversals stay visible;
// the statement is the full history of the account.
func (r *PgxPostingRepository) ListTransactionsByAccountID(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT t.transaction_id, t.group_id, t.tenant_id, t.account_id, t.amount, t.transaction_type, t.entry_date, t.description, t.running_balance,
		       t.created_at, t.created_by, t.last_updated_at, t.last_updated_by, g.entry_date, g.description
		FROM transactions t
		JOIN posting_groups g ON t.group_id = g.group_id
		WHERE t.account_id = $1 AND t.tenant_id = $2
	`
	orderByClause := `ORDER BY g.entry_date DESC, t.created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID, tenantID}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (g.entry_date, t.created_at) < ($3, $4)`
		args = append(args, lastEntryDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for account "+accountID+" in tenant "+tenantID, err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		var m models.Transaction
		scanErr := rows.Scan(
			&m.TransactionID,
			&m.GroupID,
			&m.TenantID,
			&m.AccountID,
			&m.Amount,
			&m.Type,
			&m.Date,
			&m.Description,
			&m.RunningBalance,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&m.GroupDate,
			&m.GroupDescription,
		)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row for account "+accountID, scanErr)
		}
		transactions = append(transactions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := transactions
	if len(transactions) > limit {
		lastTxn := transactions[limit-1]
		token := pagination.EncodeToken(lastTxn.GroupDate, lastTxn.CreatedAt)
		nextTokenVal = &token
		results = transactions[:limit]
	}

	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

// SumAccountTransactions replays the transaction log for one account: the
// signed sum of all its lines, restricted to entry_date <= asOf when asOf is
// non-nil. This is the ground truth the cached balance must agree with.
func (r *PgxPostingRepository) SumAccountTransactions(ctx context.Context, tenantID, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN transaction_type = 'DEBIT' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE tenant_id = $1 AND account_id = $2
	`
	args := []interface{}{tenantID, accountID}
	if asOf != nil {
		query += ` AND entry_date <= $3`
		args = append(args, *asOf)
	}
	query += `;`

	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum transactions for account "+accountID, err)
	}
	return sum, nil
}

// SumAccountTransactionsInTx replays the full log for one account inside the
// caller's transaction. Repair runs this after locking the account row, so the
// sum cannot be overtaken by a concurrent posting before the overwrite.
func (r *PgxPostingRepository) SumAccountTransactionsInTx(ctx context.Context, tx pgx.Tx, tenantID, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN transaction_type = 'DEBIT' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE tenant_id = $1 AND account_id = $2;
	`

	var sum decimal.Decimal
	if err := tx.QueryRow(ctx, query, tenantID, accountID).Scan(&sum); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum transactions for account "+accountID, err)
	}
	return sum, nil
}
