package mapping

import (
	"github.com/finstok/finstok_backend/internal/core/domain"
	"github.com/finstok/finstok_backend/internal/models"
)

// ToModelPostingGroup converts a domain posting group for DB storage.
func ToModelPostingGroup(d domain.PostingGroup) models.PostingGroup {
	return models.PostingGroup{
		GroupID:          d.GroupID,
		TenantID:         d.TenantID,
		Date:             d.Date,
		Description:      d.Description,
		CurrencyCode:     d.CurrencyCode,
		DocumentType:     string(d.DocumentType),
		DocumentID:       d.DocumentID,
		Status:           models.PostingStatus(d.Status),
		OriginalGroupID:  d.OriginalGroupID,
		ReversingGroupID: d.ReversingGroupID,
		Amount:           d.Amount,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPostingGroup converts a posting group row to its domain representation.
func ToDomainPostingGroup(m models.PostingGroup) domain.PostingGroup {
	return domain.PostingGroup{
		GroupID:          m.GroupID,
		TenantID:         m.TenantID,
		Date:             m.Date,
		Description:      m.Description,
		CurrencyCode:     m.CurrencyCode,
		DocumentType:     domain.DocumentType(m.DocumentType),
		DocumentID:       m.DocumentID,
		Status:           domain.PostingStatus(m.Status),
		OriginalGroupID:  m.OriginalGroupID,
		ReversingGroupID: m.ReversingGroupID,
		Amount:           m.Amount,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelTransaction converts a domain transaction line for DB storage.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:  d.TransactionID,
		GroupID:        d.GroupID,
		TenantID:       d.TenantID,
		AccountID:      d.AccountID,
		Amount:         d.Amount,
		Type:           models.TransactionType(d.Type),
		Date:           d.Date,
		Description:    d.Description,
		RunningBalance: d.RunningBalance,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a transaction row to its domain representation.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:    m.TransactionID,
		GroupID:          m.GroupID,
		TenantID:         m.TenantID,
		AccountID:        m.AccountID,
		Amount:           m.Amount,
		Type:             domain.TransactionType(m.Type),
		Date:             m.Date,
		Description:      m.Description,
		RunningBalance:   m.RunningBalance,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
		GroupDate:        m.GroupDate,
		GroupDescription: m.GroupDescription,
	}
}

// ToDomainTransactionSlice converts a slice of transaction rows.
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
