package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord is the cached (on-hand, reserved) pair for a product at a
// location. It is a projection of the movement log, rebuildable by replay;
// NetAvailable is always derived, never stored.
type StockRecord struct {
	TenantID   string          `json:"tenantID"`
	ProductID  string          `json:"productID"`
	LocationID string          `json:"locationID"`
	OnHand     decimal.Decimal `json:"onHand"`   // >= 0
	Reserved   decimal.Decimal `json:"reserved"` // 0 <= reserved <= onHand
	AuditFields
}

// NetAvailable returns on-hand minus reserved.
func (s *StockRecord) NetAvailable() decimal.Decimal {
	return s.OnHand.Sub(s.Reserved)
}

// CheckIntegrity reports whether the record violates the stock invariants.
// A violation indicates a reservation bug and must be surfaced, not clamped.
func (s *StockRecord) CheckIntegrity() bool {
	if s.OnHand.IsNegative() || s.Reserved.IsNegative() {
		return false
	}
	return !s.Reserved.GreaterThan(s.OnHand)
}

// StockDetail is a StockRecord joined with product and location metadata for
// display.
type StockDetail struct {
	StockRecord
	ProductSKU   string `json:"productSKU"`
	ProductName  string `json:"productName"`
	WarehouseID  string `json:"warehouseID"`
	LocationName string `json:"locationName"`
}

// Movement is an immutable stock event. The sum of all movements affecting a
// location reconstructs that location's on-hand quantity.
type Movement struct {
	MovementID     string          `json:"movementID"` // Primary Key (UUID)
	TenantID       string          `json:"tenantID"`   // Partition key (Not Null)
	ProductID      string          `json:"productID"`
	FromLocationID *string         `json:"fromLocationID"` // Nil for receipts
	ToLocationID   *string         `json:"toLocationID"`   // Nil for issues/consumption
	Quantity       decimal.Decimal `json:"quantity"`       // Positive value
	Reference      string          `json:"reference"`      // Order/shipment id, count tag
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// Reservation is a hold against available stock. It reduces net available
// without moving physical quantity. Releasing twice is an error so callers can
// detect double-release bugs.
type Reservation struct {
	ReservationID string          `json:"reservationID"` // Primary Key (UUID)
	TenantID      string          `json:"tenantID"`      // Partition key (Not Null)
	ProductID     string          `json:"productID"`
	LocationID    string          `json:"locationID"`
	Quantity      decimal.Decimal `json:"quantity"` // Positive value
	Reference     string          `json:"reference"`
	Released      bool            `json:"released"`
	ReleasedAt    *time.Time      `json:"releasedAt"`
	AuditFields
}
