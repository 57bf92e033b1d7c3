package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finstok/finstok_backend/internal/apperrors"
	"github.com/finstok/finstok_backend/internal/core/domain"
	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	"github.com/finstok/finstok_backend/internal/models"
	"github.com/finstok/finstok_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxContactRepository struct {
	BaseRepository
}

// newPgxContactRepository creates a new repository for contact data.
func newPgxContactRepository(pool *pgxpool.Pool) portsrepo.ContactRepositoryFacade {
	return &PgxContactRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxContactRepository implements portsrepo.ContactRepositoryFacade
var _ portsrepo.ContactRepositoryFacade = (*PgxContactRepository)(nil)

const contactColumns = `contact_id, tenant_id, contact_type, name, tax_number, phone, email, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanContactRow(row pgx.Row) (*models.Contact, error) {
	var m models.Contact
	err := row.Scan(
		&m.ContactID,
		&m.TenantID,
		&m.ContactType,
		&m.Name,
		&m.TaxNumber,
		&m.Phone,
		&m.Email,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveContact inserts a new contact.
func (r *PgxContactRepository) SaveContact(ctx context.Context, contact domain.Contact) error {
	modelContact := mapping.ToModelContact(contact)

	query := `
		INSERT INTO contacts (contact_id, tenant_id, contact_type, name, tax_number, phone, email, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`

	_, err := r.Pool.Exec(ctx, query,
		modelContact.ContactID,
		modelContact.TenantID,
		modelContact.ContactType,
		modelContact.Name,
		modelContact.TaxNumber,
		modelContact.Phone,
		modelContact.Email,
		modelContact.IsActive,
		modelContact.CreatedAt,
		modelContact.CreatedBy,
		modelContact.LastUpdatedAt,
		modelContact.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: contact with ID %s already exists", apperrors.ErrDuplicate, modelContact.ContactID)
		}
		return fmt.Errorf("failed to save contact %s: %w", modelContact.ContactID, err)
	}
	return nil
}

// FindContactByID retrieves a contact by its ID.
func (r *PgxContactRepository) FindContactByID(ctx context.Context, contactID string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE contact_id = $1;`

	m, err := scanContactRow(r.Pool.QueryRow(ctx, query, contactID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contact by ID %s: %w", contactID, err)
	}

	domainContact := mapping.ToDomainContact(*m)
	return &domainContact, nil
}

// ListContacts retrieves active contacts of a tenant, optionally filtered by type.
func (r *PgxContactRepository) ListContacts(ctx context.Context, tenantID string, contactType *domain.ContactType) ([]domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE tenant_id = $1 AND is_active = TRUE`
	args := []interface{}{tenantID}
	if contactType != nil {
		query += ` AND contact_type = $2`
		args = append(args, *contactType)
	}
	query += ` ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		m, scanErr := scanContactRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan contact row for tenant %s: %w", tenantID, scanErr)
		}
		contacts = append(contacts, *m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating contact rows for tenant %s: %w", tenantID, rows.Err())
	}

	return mapping.ToDomainContactSlice(contacts), nil
}
