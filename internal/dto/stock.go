package dto

import (
	"time"

	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordMovementRequest defines the payload for recording a stock movement.
// At least one of fromLocationID/toLocationID must be set.
type RecordMovementRequest struct {
	ProductID      string          `json:"productID" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	FromLocationID *string         `json:"fromLocationID"`
	ToLocationID   *string         `json:"toLocationID"`
	Reference      string          `json:"reference"`
}

// ReserveRequest defines the payload for reserving stock.
type ReserveRequest struct {
	ProductID  string          `json:"productID" binding:"required"`
	LocationID string          `json:"locationID" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Reference  string          `json:"reference"`
}

// CountAdjustRequest defines the payload for reconciling a physical count.
type CountAdjustRequest struct {
	ProductID       string          `json:"productID" binding:"required"`
	LocationID      string          `json:"locationID" binding:"required"`
	CountedQuantity decimal.Decimal `json:"countedQuantity"`
	Reference       string          `json:"reference"`
}

// StockFilterParams narrows a stock listing to a warehouse or location.
type StockFilterParams struct {
	WarehouseID *string `form:"warehouseID"`
	LocationID  *string `form:"locationID"`
}

// StockRecordResponse defines the data returned for one stock position.
type StockRecordResponse struct {
	ProductID    string          `json:"productID"`
	ProductSKU   string          `json:"productSKU,omitempty"`
	ProductName  string          `json:"productName,omitempty"`
	LocationID   string          `json:"locationID"`
	LocationName string          `json:"locationName,omitempty"`
	WarehouseID  string          `json:"warehouseID,omitempty"`
	OnHand       decimal.Decimal `json:"onHand"`
	Reserved     decimal.Decimal `json:"reserved"`
	NetAvailable decimal.Decimal `json:"netAvailable"`
}

// ListStockResponse wraps a stock listing.
type ListStockResponse struct {
	Records []StockRecordResponse `json:"records"`
}

// MovementResponse defines the data returned for a stock movement.
type MovementResponse struct {
	MovementID     string          `json:"movementID"`
	ProductID      string          `json:"productID"`
	FromLocationID *string         `json:"fromLocationID,omitempty"`
	ToLocationID   *string         `json:"toLocationID,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reference      string          `json:"reference,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ListMovementsParams holds parameters for listing movements.
type ListMovementsParams struct {
	ProductID *string `form:"productID"`
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListMovementsResponse wraps a paginated movement listing.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ReservationResponse defines the data returned for a reservation.
type ReservationResponse struct {
	ReservationID string          `json:"reservationID"`
	ProductID     string          `json:"productID"`
	LocationID    string          `json:"locationID"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reference     string          `json:"reference,omitempty"`
	Released      bool            `json:"released"`
}

// StockReplayResponse reports the outcome of a stock replay.
type StockReplayResponse struct {
	ProductID  string          `json:"productID"`
	LocationID string          `json:"locationID"`
	Cached     decimal.Decimal `json:"cached"`
	Replayed   decimal.Decimal `json:"replayed"`
	InSync     bool            `json:"inSync"`
}

// ToStockRecordResponse converts a joined stock detail to its DTO.
func ToStockRecordResponse(s *domain.StockDetail) StockRecordResponse {
	return StockRecordResponse{
		ProductID:    s.ProductID,
		ProductSKU:   s.ProductSKU,
		ProductName:  s.ProductName,
		LocationID:   s.LocationID,
		LocationName: s.LocationName,
		WarehouseID:  s.WarehouseID,
		OnHand:       s.OnHand,
		Reserved:     s.Reserved,
		NetAvailable: s.NetAvailable(),
	}
}

// ToStockRecordResponses converts a slice of stock details.
func ToStockRecordResponses(records []domain.StockDetail) []StockRecordResponse {
	responses := make([]StockRecordResponse, len(records))
	for i := range records {
		responses[i] = ToStockRecordResponse(&records[i])
	}
	return responses
}

// ToMovementResponse converts a domain.Movement to its DTO.
func ToMovementResponse(m *domain.Movement) MovementResponse {
	return MovementResponse{
		MovementID:     m.MovementID,
		ProductID:      m.ProductID,
		FromLocationID: m.FromLocationID,
		ToLocationID:   m.ToLocationID,
		Quantity:       m.Quantity,
		Reference:      m.Reference,
		CreatedAt:      m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of domain movements.
func ToMovementResponses(movements []domain.Movement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses
}

// ToReservationResponse converts a domain.Reservation to its DTO.
func ToReservationResponse(r *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ReservationID: r.ReservationID,
		ProductID:     r.ProductID,
		LocationID:    r.LocationID,
		Quantity:      r.Quantity,
		Reference:     r.Reference,
		Released:      r.Released,
	}
}
