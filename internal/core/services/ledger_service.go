package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
	"github.com/finstok/finstok_backend/internal/utils/accounting"
)

var (
	ErrGroupMinEntries    = errors.New("posting group must have at least two transaction entries")
	ErrGroupMinAccounts   = errors.New("posting group must affect at least two different accounts")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDescriptionMissing = errors.New("posting group description is required")
)

// ledgerService is the posting engine. It is the only component that creates
// transactions; every other component that needs a ledger effect routes
// through it.
type ledgerService struct {
	postingRepo portsrepo.PostingRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(postingRepo portsrepo.PostingRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		postingRepo: postingRepo,
		accountRepo: accountRepo,
		accountSvc:  accountSvc,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// buildPostingGroup validates a post request and assembles the domain group,
// its transactions, and the per-account balance deltas. No persistence.
func (s *ledgerService) buildPostingGroup(ctx context.Context, tenantID string, req dto.PostRequest, creatorUserID string) (*domain.PostingGroup, []domain.Transaction, map[string]decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Transactions) < 2 {
		return nil, nil, nil, ErrGroupMinEntries
	}
	if req.Description == "" {
		return nil, nil, nil, ErrDescriptionMissing
	}

	accountSet := make(map[string]bool)
	for _, txn := range req.Transactions {
		accountSet[txn.AccountID] = true
	}
	if len(accountSet) < 2 {
		return nil, nil, nil, ErrGroupMinAccounts
	}

	now := time.Now().UTC()
	groupID := uuid.NewString()

	domainTransactions := make([]domain.Transaction, len(req.Transactions))
	accountIDs := make([]string, 0, len(req.Transactions))
	for i, txnReq := range req.Transactions {
		if txnReq.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, nil, nil, fmt.Errorf("%w: transaction amount must be positive for account %s", apperrors.ErrValidation, txnReq.AccountID)
		}

		transactionDate := req.Date
		if txnReq.Date != nil {
			transactionDate = *txnReq.Date
		}

		domainTransactions[i] = domain.Transaction{
			TransactionID: uuid.NewString(),
			GroupID:       groupID,
			TenantID:      tenantID,
			AccountID:     txnReq.AccountID,
			Amount:        txnReq.Amount,
			Type:          txnReq.Type,
			Date:          transactionDate,
			Description:   txnReq.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
			// RunningBalance is calculated by the repository under lock
		}
		accountIDs = append(accountIDs, txnReq.AccountID)
	}

	// Double-entry check: exact decimal equality of the two sides
	if err := accounting.ValidateGroupBalance(domainTransactions); err != nil {
		return nil, nil, nil, err
	}

	// Fetch the accounts and validate tenant, activity, and the single-currency rule
	uniqueAccountIDs := uniqueStrings(accountIDs)
	accountsMap, err := s.accountSvc.GetAccountsByIDs(ctx, tenantID, uniqueAccountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for posting", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, nil, nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	var groupCurrency string
	for _, id := range uniqueAccountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, nil, nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return nil, nil, nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		if acc.IntegrityHold {
			return nil, nil, nil, fmt.Errorf("%w: account %s is held for balance reconciliation", apperrors.ErrIntegrity, id)
		}
		if groupCurrency == "" {
			groupCurrency = acc.CurrencyCode
		} else if acc.CurrencyCode != groupCurrency {
			return nil, nil, nil, fmt.Errorf("%w: account %s is %s, group is %s", apperrors.ErrCurrencyMismatch, id, acc.CurrencyCode, groupCurrency)
		}
	}

	balanceChanges := accounting.BalanceChanges(domainTransactions)

	documentType := req.DocumentType
	if documentType == "" {
		documentType = domain.DocumentManual
	}

	group := domain.PostingGroup{
		GroupID:      groupID,
		TenantID:     tenantID,
		Date:         req.Date,
		Description:  req.Description,
		CurrencyCode: groupCurrency,
		DocumentType: documentType,
		DocumentID:   req.DocumentID,
		Status:       domain.Posted,
		Amount:       accounting.GroupAmount(domainTransactions),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	return &group, domainTransactions, balanceChanges, nil
}

// Post validates and commits a balanced posting group atomically.
func (s *ledgerService) Post(ctx context.Context, tenantID string, req dto.PostRequest, creatorUserID string) (*domain.PostingGroup, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, transactions, balanceChanges, err := s.buildPostingGroup(ctx, tenantID, req, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.postingRepo.SavePostingGroup(ctx, *group, transactions, balanceChanges); err != nil {
		logger.Error("Failed to save posting group", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save posting group: %w", err)
	}

	logger.Info("Posting group created successfully", slog.String("group_id", group.GroupID), slog.String("amount", group.Amount.String()))
	return group, nil
}

// PostInTx commits a balanced posting group inside a caller-owned transaction.
func (s *ledgerService) PostInTx(ctx context.Context, tx pgx.Tx, tenantID string, req dto.PostRequest, creatorUserID string) (*domain.PostingGroup, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, transactions, balanceChanges, err := s.buildPostingGroup(ctx, tenantID, req, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.postingRepo.SavePostingGroupInTx(ctx, tx, *group, transactions, balanceChanges); err != nil {
		logger.Error("Failed to save posting group in caller transaction", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save posting group: %w", err)
	}

	return group, nil
}

// validateReversalAndGetOriginal resolves the transaction's containing group
// and checks the group may be reversed.
func (s *ledgerService) validateReversalAndGetOriginal(ctx context.Context, tenantID string, transactionID string) (*domain.PostingGroup, []domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.postingRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		logger.Error("Failed to fetch transaction for reversal", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, nil, fmt.Errorf("failed to retrieve transaction: %w", err)
	}
	if txn.TenantID != tenantID {
		logger.Warn("Attempted to reverse transaction from wrong tenant", slog.String("transaction_id", transactionID))
		return nil, nil, apperrors.ErrNotFound // Obscure existence
	}

	originalGroup, err := s.postingRepo.FindGroupByID(ctx, txn.GroupID)
	if err != nil {
		logger.Error("Failed to fetch group for reversal", slog.String("error", err.Error()), slog.String("group_id", txn.GroupID))
		return nil, nil, fmt.Errorf("failed to retrieve original group: %w", err)
	}

	if originalGroup.Status != domain.Posted {
		logger.Warn("Attempted to reverse non-posted group", slog.String("status", string(originalGroup.Status)))
		return nil, nil, fmt.Errorf("%w: group status is %s, expected POSTED", apperrors.ErrConflict, originalGroup.Status)
	}
	if originalGroup.OriginalGroupID != nil {
		return nil, nil, fmt.Errorf("%w: cannot reverse a group that is already a reversal", apperrors.ErrConflict)
	}

	originalTransactions, err := s.postingRepo.FindTransactionsByGroupID(ctx, originalGroup.GroupID)
	if err != nil {
		logger.Error("Failed to fetch original transactions for reversal", slog.String("error", err.Error()), slog.String("group_id", originalGroup.GroupID))
		return nil, nil, fmt.Errorf("failed to retrieve original transactions: %w", err)
	}

	return originalGroup, originalTransactions, nil
}

// Reverse creates an offsetting posting group for the group containing the
// given transaction. The reversing group mirrors each line with the opposite
// type; the original group only changes status and linkage, never content.
func (s *ledgerService) Reverse(ctx context.Context, tenantID string, transactionID string, userID string) (*domain.PostingGroup, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	originalGroup, originalTransactions, err := s.validateReversalAndGetOriginal(ctx, tenantID, transactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newGroupID := uuid.NewString()

	reversingGroup := domain.PostingGroup{
		GroupID:         newGroupID,
		TenantID:        tenantID,
		Date:            originalGroup.Date,
		Description:     fmt.Sprintf("Reversal of: %s", originalGroup.Description),
		CurrencyCode:    originalGroup.CurrencyCode,
		DocumentType:    originalGroup.DocumentType,
		DocumentID:      originalGroup.DocumentID,
		Status:          domain.Posted,
		OriginalGroupID: &originalGroup.GroupID,
		Amount:          originalGroup.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	reversingTransactions := make([]domain.Transaction, len(originalTransactions))
	for i, origTx := range originalTransactions {
		reversingTransactions[i] = domain.Transaction{
			TransactionID: uuid.NewString(),
			GroupID:       newGroupID,
			TenantID:      tenantID,
			AccountID:     origTx.AccountID,
			Amount:        origTx.Amount,
			Type:          origTx.Type.Opposite(),
			Date:          origTx.Date,
			Description:   origTx.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	balanceChanges := accounting.BalanceChanges(reversingTransactions)

	// Post the reversing group and flip the original's status in one
	// transaction, so no reader ever sees the pair half-applied. A prior
	// attempt rolls back completely, so rerunning on contention is safe.
	err = runInTx(ctx, s.postingRepo, func(tx pgx.Tx) error {
		if err := s.postingRepo.SavePostingGroupInTx(ctx, tx, reversingGroup, reversingTransactions, balanceChanges); err != nil {
			logger.Error("Failed to save reversing group", slog.String("error", err.Error()), slog.String("original_group_id", originalGroup.GroupID))
			return fmt.Errorf("failed to save reversing group: %w", err)
		}

		if err := s.postingRepo.UpdateGroupStatusAndLinksInTx(ctx, tx, originalGroup.GroupID, domain.Reversed, &newGroupID, userID, now); err != nil {
			logger.Error("Failed to mark original group reversed", slog.String("error", err.Error()), slog.String("group_id", originalGroup.GroupID))
			return fmt.Errorf("failed to update original group: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Posting group reversed", slog.String("original_group_id", originalGroup.GroupID), slog.String("reversing_group_id", newGroupID))
	return &reversingGroup, nil
}

// GetGroupByID retrieves a posting group with its transactions.
func (s *ledgerService) GetGroupByID(ctx context.Context, tenantID string, groupID string) (*domain.PostingGroup, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, err := s.postingRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find posting group by ID", slog.String("error", err.Error()), slog.String("group_id", groupID))
		}
		return nil, err
	}

	if group.TenantID != tenantID {
		logger.Warn("Posting group found but belongs to different tenant", slog.String("group_id", groupID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	transactions, err := s.postingRepo.FindTransactionsByGroupID(ctx, groupID)
	if err != nil {
		logger.Error("Failed to fetch transactions for group", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to retrieve transactions for group %s: %w", groupID, err)
	}

	for i := range transactions {
		transactions[i].GroupDate = group.Date
		transactions[i].GroupDescription = group.Description
	}
	group.Transactions = transactions

	return group, nil
}

// ListGroups retrieves a paginated list of posting groups.
func (s *ledgerService) ListGroups(ctx context.Context, tenantID string, params dto.ListGroupsParams) (*dto.ListGroupsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	groups, nextToken, err := s.postingRepo.ListGroupsByTenant(ctx, tenantID, params.Limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		logger.Error("Failed to list posting groups", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve posting groups: %w", err)
	}

	groupResponses := make([]dto.PostingGroupResponse, len(groups))
	for i := range groups {
		groupResponses[i] = dto.ToPostingGroupResponse(&groups[i])
	}

	return &dto.ListGroupsResponse{
		Groups:    groupResponses,
		NextToken: nextToken,
	}, nil
}

// GetBalance derives an account balance from the transaction log. With a nil
// asOf the current balance is returned; otherwise the balance as of the given
// date. Always computed from the log, never from the cache, so historical
// queries stay exact.
func (s *ledgerService) GetBalance(ctx context.Context, tenantID string, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Tenant scope check first
	if _, err := s.accountSvc.GetAccountByID(ctx, tenantID, accountID); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.postingRepo.SumAccountTransactions(ctx, tenantID, accountID, asOf)
	if err != nil {
		logger.Error("Failed to derive account balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return decimal.Zero, fmt.Errorf("failed to derive balance: %w", err)
	}
	return balance, nil
}

// ListTransactionsByAccount retrieves a paginated account statement.
func (s *ledgerService) ListTransactionsByAccount(ctx context.Context, tenantID string, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountSvc.GetAccountByID(ctx, tenantID, accountID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.postingRepo.ListTransactionsByAccountID(ctx, tenantID, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transactions by account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}

// ReplayBalance recomputes an account balance from its log and compares it to
// the cache. Drift is always reported, never silently corrected; with repair
// set the cache is overwritten after the report.
func (s *ledgerService) ReplayBalance(ctx context.Context, tenantID string, accountID string, repair bool, userID string) (*dto.ReplayResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountSvc.GetAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	replayed, err := s.postingRepo.SumAccountTransactions(ctx, tenantID, accountID, nil)
	if err != nil {
		logger.Error("Failed to replay account balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to replay balance: %w", err)
	}

	resp := &dto.ReplayResponse{
		AccountID: accountID,
		Cached:    account.Balance,
		Replayed:  replayed,
		InSync:    account.Balance.Equal(replayed),
	}

	if !resp.InSync {
		logger.Error("Cached balance drifted from transaction log",
			slog.String("account_id", accountID),
			slog.String("cached", account.Balance.String()),
			slog.String("replayed", replayed.String()))

		now := time.Now().UTC()
		if repair {
			// Recompute the sum after taking the row lock. A posting that
			// committed between the unlocked read and here would otherwise be
			// clobbered by the overwrite.
			err := runInTx(ctx, s.postingRepo, func(tx pgx.Tx) error {
				if _, lockErr := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{accountID}); lockErr != nil {
					return lockErr
				}
				lockedSum, sumErr := s.postingRepo.SumAccountTransactionsInTx(ctx, tx, tenantID, accountID)
				if sumErr != nil {
					return sumErr
				}
				resp.Replayed = lockedSum
				return s.accountRepo.ResetAccountBalanceInTx(ctx, tx, accountID, lockedSum, userID, now)
			})
			if err != nil {
				logger.Error("Failed to repair cached balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
				return nil, fmt.Errorf("failed to repair balance: %w", err)
			}
			logger.Info("Cached balance repaired from log", slog.String("account_id", accountID))
			return resp, nil
		}

		// Block further postings against the account until it is reconciled.
		if holdErr := s.accountRepo.SetAccountIntegrityHold(ctx, accountID, true, userID, now); holdErr != nil {
			logger.Error("Failed to place integrity hold", slog.String("error", holdErr.Error()), slog.String("account_id", accountID))
		}

		return resp, fmt.Errorf("%w: account %s cached %s, replayed %s", apperrors.ErrIntegrity, accountID, account.Balance.String(), replayed.String())
	}

	return resp, nil
}
