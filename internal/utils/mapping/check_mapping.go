package mapping

import (
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/models"
)

// ToModelCheck converts a domain check for DB storage.
func ToModelCheck(d domain.Check) models.Check {
	return models.Check{
		CheckID:               d.CheckID,
		TenantID:              d.TenantID,
		CheckType:             models.CheckType(d.CheckType),
		CounterpartyAccountID: d.CounterpartyAccountID,
		DueDate:               d.DueDate,
		BankName:              d.BankName,
		SerialNumber:          d.SerialNumber,
		Amount:                d.Amount,
		CurrencyCode:          d.CurrencyCode,
		Status:                models.CheckStatus(d.Status),
		SettlementGroupID:     d.SettlementGroupID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCheck converts a check row to its domain representation.
func ToDomainCheck(m models.Check) domain.Check {
	return domain.Check{
		CheckID:               m.CheckID,
		TenantID:              m.TenantID,
		CheckType:             domain.CheckType(m.CheckType),
		CounterpartyAccountID: m.CounterpartyAccountID,
		DueDate:               m.DueDate,
		BankName:              m.BankName,
		SerialNumber:          m.SerialNumber,
		Amount:                m.Amount,
		CurrencyCode:          m.CurrencyCode,
		Status:                domain.CheckStatus(m.Status),
		SettlementGroupID:     m.SettlementGroupID,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCheckSlice converts a slice of check rows.
func ToDomainCheckSlice(ms []models.Check) []domain.Check {
	ds := make([]domain.Check, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCheck(m)
	}
	return ds
}
