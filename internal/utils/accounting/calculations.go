package accounting

import (
	"fmt"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount returns the contribution of a transaction line to its account
// balance: positive for debits, negative for credits. The cached balance of an
// account therefore always equals sum(debits) - sum(credits) over its log.
func SignedAmount(txn domain.Transaction) decimal.Decimal {
	if txn.Type == domain.Debit {
		return txn.Amount
	}
	return txn.Amount.Neg()
}

// ValidateGroupBalance checks the double-entry invariant for a posting group:
// every amount strictly positive and sum(debits) exactly equal to
// sum(credits). Comparison is exact decimal equality, no rounding tolerance.
func ValidateGroupBalance(transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return fmt.Errorf("posting group must contain at least one transaction")
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero
	for _, txn := range transactions {
		if txn.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("transaction amount must be positive for transaction ID %s", txn.TransactionID)
		}
		if txn.Type == domain.Debit {
			debitsSum = debitsSum.Add(txn.Amount)
		} else {
			creditsSum = creditsSum.Add(txn.Amount)
		}
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("debits sum is %s and credits sum is %s", debitsSum.String(), creditsSum.String())
	}
	return nil
}

// GroupAmount computes the economic value of a balanced group: the sum of its
// debit side.
func GroupAmount(transactions []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		if txn.Type == domain.Debit {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// BalanceChanges folds a group's transactions into the net balance delta per
// account, the unit the repository applies under row locks.
func BalanceChanges(transactions []domain.Transaction) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal)
	for _, txn := range transactions {
		changes[txn.AccountID] = changes[txn.AccountID].Add(SignedAmount(txn))
	}
	return changes
}
