package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord mirrors the stock_records table, the cached projection of the
// movement log per (product, location).
type StockRecord struct {
	TenantID   string          `json:"tenantID"`
	ProductID  string          `json:"productID"`
	LocationID string          `json:"locationID"`
	OnHand     decimal.Decimal `json:"onHand"`
	Reserved   decimal.Decimal `json:"reserved"`
	AuditFields
}

// Movement mirrors the stock_movements table. Rows are append-only.
type Movement struct {
	MovementID     string          `json:"movementID"`
	TenantID       string          `json:"tenantID"`
	ProductID      string          `json:"productID"`
	FromLocationID *string         `json:"fromLocationID"`
	ToLocationID   *string         `json:"toLocationID"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reference      string          `json:"reference"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// Reservation mirrors the stock_reservations table.
type Reservation struct {
	ReservationID string          `json:"reservationID"`
	TenantID      string          `json:"tenantID"`
	ProductID     string          `json:"productID"`
	LocationID    string          `json:"locationID"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reference     string          `json:"reference"`
	Released      bool            `json:"released"`
	ReleasedAt    *time.Time      `json:"releasedAt"`
	AuditFields
}
