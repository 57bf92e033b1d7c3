package mapping

import (
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/models"
)

// ToDomainStockRecord converts a stock row to its domain representation.
func ToDomainStockRecord(m models.StockRecord) domain.StockRecord {
	return domain.StockRecord{
		TenantID:    m.TenantID,
		ProductID:   m.ProductID,
		LocationID:  m.LocationID,
		OnHand:      m.OnHand,
		Reserved:    m.Reserved,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelMovement converts a domain movement for DB storage.
func ToModelMovement(d domain.Movement) models.Movement {
	return models.Movement{
		MovementID:     d.MovementID,
		TenantID:       d.TenantID,
		ProductID:      d.ProductID,
		FromLocationID: d.FromLocationID,
		ToLocationID:   d.ToLocationID,
		Quantity:       d.Quantity,
		Reference:      d.Reference,
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// ToDomainMovement converts a movement row to its domain representation.
func ToDomainMovement(m models.Movement) domain.Movement {
	return domain.Movement{
		MovementID:     m.MovementID,
		TenantID:       m.TenantID,
		ProductID:      m.ProductID,
		FromLocationID: m.FromLocationID,
		ToLocationID:   m.ToLocationID,
		Quantity:       m.Quantity,
		Reference:      m.Reference,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}

// ToDomainMovementSlice converts a slice of movement rows.
func ToDomainMovementSlice(ms []models.Movement) []domain.Movement {
	ds := make([]domain.Movement, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMovement(m)
	}
	return ds
}

// ToModelReservation converts a domain reservation for DB storage.
func ToModelReservation(d domain.Reservation) models.Reservation {
	return models.Reservation{
		ReservationID: d.ReservationID,
		TenantID:      d.TenantID,
		ProductID:     d.ProductID,
		LocationID:    d.LocationID,
		Quantity:      d.Quantity,
		Reference:     d.Reference,
		Released:      d.Released,
		ReleasedAt:    d.ReleasedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainReservation converts a reservation row to its domain representation.
func ToDomainReservation(m models.Reservation) domain.Reservation {
	return domain.Reservation{
		ReservationID: m.ReservationID,
		TenantID:      m.TenantID,
		ProductID:     m.ProductID,
		LocationID:    m.LocationID,
		Quantity:      m.Quantity,
		Reference:     m.Reference,
		Released:      m.Released,
		ReleasedAt:    m.ReleasedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
