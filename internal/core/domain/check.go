package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckType distinguishes post-dated instruments we hold from those we issued.
type CheckType string

const (
	CheckReceived CheckType = "RECEIVED"
	CheckGiven    CheckType = "GIVEN"
)

// CheckStatus is the lifecycle state of a check. All non-portfolio states are
// terminal.
type CheckStatus string

const (
	CheckPortfolio CheckStatus = "PORTFOLIO"
	CheckCollected CheckStatus = "COLLECTED"
	CheckPaid      CheckStatus = "PAID"
	CheckBounced   CheckStatus = "BOUNCED"
)

// checkTransitions encodes transition legality per check type. Anything not in
// the table is illegal.
var checkTransitions = map[CheckType]map[CheckStatus][]CheckStatus{
	CheckReceived: {
		CheckPortfolio: {CheckCollected, CheckBounced},
	},
	CheckGiven: {
		CheckPortfolio: {CheckPaid, CheckBounced},
	},
}

// Check represents a post-dated payment instrument. It is a pure tracking
// record; only its settlement produces ledger transactions.
type Check struct {
	CheckID               string          `json:"checkID"`  // Primary Key (UUID)
	TenantID              string          `json:"tenantID"` // Partition key (Not Null)
	CheckType             CheckType       `json:"checkType"`
	CounterpartyAccountID string          `json:"counterpartyAccountID"` // FK -> Account of the contact
	DueDate               time.Time       `json:"dueDate"`
	BankName              string          `json:"bankName"`
	SerialNumber          string          `json:"serialNumber"`
	Amount                decimal.Decimal `json:"amount"`
	CurrencyCode          string          `json:"currencyCode"`
	Status                CheckStatus     `json:"status"`
	SettlementGroupID     *string         `json:"settlementGroupID"` // Posting group created at settlement
	AuditFields
}

// CanTransition reports whether the check may legally move to target from its
// current status.
func (c *Check) CanTransition(target CheckStatus) bool {
	for _, allowed := range checkTransitions[c.CheckType][c.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// SettledStatus returns the terminal settlement status for the check's type:
// COLLECTED for received checks, PAID for given ones.
func (c *Check) SettledStatus() CheckStatus {
	if c.CheckType == CheckReceived {
		return CheckCollected
	}
	return CheckPaid
}

// IsTerminal reports whether the check reached a state with no further legal
// transitions.
func (c *Check) IsTerminal() bool {
	return len(checkTransitions[c.CheckType][c.Status]) == 0
}
