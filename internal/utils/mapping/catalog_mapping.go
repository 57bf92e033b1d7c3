package mapping

import (
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/models"
)

// ToModelProduct converts a domain product for DB storage.
func ToModelProduct(d domain.Product) models.Product {
	return models.Product{
		ProductID:   d.ProductID,
		TenantID:    d.TenantID,
		SKU:         d.SKU,
		Name:        d.Name,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainProduct converts a product row to its domain representation.
func ToDomainProduct(m models.Product) domain.Product {
	return domain.Product{
		ProductID:   m.ProductID,
		TenantID:    m.TenantID,
		SKU:         m.SKU,
		Name:        m.Name,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainProductSlice converts a slice of product rows.
func ToDomainProductSlice(ms []models.Product) []domain.Product {
	ds := make([]domain.Product, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainProduct(m)
	}
	return ds
}

// ToModelLocation converts a domain location for DB storage.
func ToModelLocation(d domain.Location) models.Location {
	return models.Location{
		LocationID:  d.LocationID,
		TenantID:    d.TenantID,
		WarehouseID: d.WarehouseID,
		Name:        d.Name,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLocation converts a location row to its domain representation.
func ToDomainLocation(m models.Location) domain.Location {
	return domain.Location{
		LocationID:  m.LocationID,
		TenantID:    m.TenantID,
		WarehouseID: m.WarehouseID,
		Name:        m.Name,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLocationSlice converts a slice of location rows.
func ToDomainLocationSlice(ms []models.Location) []domain.Location {
	ds := make([]domain.Location, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLocation(m)
	}
	return ds
}
