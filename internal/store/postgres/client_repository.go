// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/id"
)

const clientColumns = `
	id, tenant_id, company_name, country, address, industry,
	ice_number, rc_number, vat_number, cnss_number,
	admin_contact_person, billing_contact_person, contact_email, contact_phone,
	status, fiscal_year_end, assigned_team_id,
	deleted_at, deleted_by, created_at, updated_at`

// clientIndexes maps unique index names to the identifier they guard.
var clientIndexes = map[string]client.Identifier{
	"ux_clients_ice_number":  client.IdentifierICE,
	"ux_clients_rc_number":   client.IdentifierRC,
	"ux_clients_vat_number":  client.IdentifierVAT,
	"ux_clients_cnss_number": client.IdentifierCNSS,
}

// ClientRepository implements client.Repository
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a new client
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	c.ID = id.NewUUIDv7()
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO clients (
			id, tenant_id, company_name, country, address, industry,
			ice_number, rc_number, vat_number, cnss_number,
			admin_contact_person, billing_contact_person, contact_email, contact_phone,
			status, fiscal_year_end, assigned_team_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`,
		c.ID, c.TenantID, c.CompanyName, c.Country, c.Address, c.Industry,
		c.ICENumber, c.RCNumber, c.VATNumber, c.CNSSNumber,
		c.AdminContactPerson, c.BillingContactPerson, c.ContactEmail, c.ContactPhone,
		string(c.Status), c.FiscalYearEnd, c.AssignedTeamID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return clientWriteError(err, c, "create")
	}
	return nil
}

// GetByID retrieves a live client of the tenant
func (r *ClientRepository) GetByID(ctx context.Context, tenantID, clientID string) (*client.Client, error) {
	return r.get(ctx, tenantID, clientID, true)
}

// GetByIDIncludingDeleted retrieves a client of the tenant even after soft deletion
func (r *ClientRepository) GetByIDIncludingDeleted(ctx context.Context, tenantID, clientID string) (*client.Client, error) {
	return r.get(ctx, tenantID, clientID, false)
}

func (r *ClientRepository) get(ctx context.Context, tenantID, clientID string, liveOnly bool) (*client.Client, error) {
	if !validID(clientID) {
		return nil, notFound("client", clientID)
	}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 AND tenant_id = $2`
	if liveOnly {
		query += ` AND deleted_at IS NULL`
	}

	c, err := scanClient(r.db.pool.QueryRow(ctx, query, clientID, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("client", clientID)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// Update replaces every mutable field of a live client
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	if !validID(c.ID) {
		return notFound("client", c.ID)
	}
	err := r.db.pool.QueryRow(ctx, `
		UPDATE clients SET
			company_name = $3, country = $4, address = $5, industry = $6,
			ice_number = $7, rc_number = $8, vat_number = $9, cnss_number = $10,
			admin_contact_person = $11, billing_contact_person = $12,
			contact_email = $13, contact_phone = $14,
			status = $15, fiscal_year_end = $16, assigned_team_id = $17,
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`,
		c.ID, c.TenantID, c.CompanyName, c.Country, c.Address, c.Industry,
		c.ICENumber, c.RCNumber, c.VATNumber, c.CNSSNumber,
		c.AdminContactPerson, c.BillingContactPerson, c.ContactEmail, c.ContactPhone,
		string(c.Status), c.FiscalYearEnd, c.AssignedTeamID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return notFound("client", c.ID)
		}
		return clientWriteError(err, c, "update")
	}
	return nil
}

// Delete soft-deletes a live client. It reports false when there was none.
func (r *ClientRepository) Delete(ctx context.Context, tenantID, clientID, actor string) (bool, error) {
	if !validID(clientID) {
		return false, nil
	}
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE clients SET deleted_at = now(), deleted_by = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, clientID, tenantID, actor)
	if err != nil {
		return false, fmt.Errorf("failed to delete client: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List pages live clients ordered by company name
func (r *ClientRepository) List(ctx context.Context, tenantID string, req domain.PageRequest) ([]*client.Client, int, error) {
	where := `tenant_id = $1 AND deleted_at IS NULL`
	args := []any{tenantID}
	if req.Search != "" {
		args = append(args, likePattern(req.Search))
		where += ` AND (company_name LIKE $2 OR ice_number LIKE $2 OR rc_number LIKE $2
			OR vat_number LIKE $2 OR industry LIKE $2)`
	}

	var total int
	if err := r.db.pool.QueryRow(ctx, `SELECT count(*) FROM clients WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	n := len(args)
	args = append(args, req.PageSize, req.Offset())
	rows, err := r.db.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM clients WHERE %s ORDER BY company_name, id LIMIT $%d OFFSET $%d`,
		clientColumns, where, n+1, n+2,
	), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	items, err := collectClients(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// IdentifierExists reports whether another live client of the tenant holds value
func (r *ClientRepository) IdentifierExists(ctx context.Context, tenantID string, field client.Identifier, value, excludeID string) (bool, error) {
	column, ok := identifierColumn(field)
	if !ok {
		return false, fmt.Errorf("unknown identifier %q", field)
	}
	var exists bool
	err := r.db.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM clients
			WHERE tenant_id = $1 AND %s = $2 AND deleted_at IS NULL AND id::text <> $3
		)`, column), tenantID, value, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", field, err)
	}
	return exists, nil
}

func identifierColumn(field client.Identifier) (string, bool) {
	for _, f := range client.Identifiers {
		if f == field {
			return string(f), true
		}
	}
	return "", false
}

// clientWriteError turns a unique index violation into a DuplicateError so
// a lost race is reported the same way as a failed pre-check.
func clientWriteError(err error, c *client.Client, op string) error {
	code, constraint := pgCode(err)
	if code == uniqueViolation {
		if field, ok := clientIndexes[constraint]; ok {
			return domain.NewDuplicate(string(field), c.IdentifierValue(field))
		}
	}
	return fmt.Errorf("failed to %s client: %w", op, err)
}

func scanClient(row pgx.Row) (*client.Client, error) {
	var c client.Client
	var status string
	var deletedAt *time.Time
	err := row.Scan(
		&c.ID, &c.TenantID, &c.CompanyName, &c.Country, &c.Address, &c.Industry,
		&c.ICENumber, &c.RCNumber, &c.VATNumber, &c.CNSSNumber,
		&c.AdminContactPerson, &c.BillingContactPerson, &c.ContactEmail, &c.ContactPhone,
		&status, &c.FiscalYearEnd, &c.AssignedTeamID,
		&deletedAt, &c.DeletedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = client.Status(status)
	c.DeletedAt = deletedAt
	c.IsDeleted = deletedAt != nil
	return &c, nil
}

func collectClients(rows pgx.Rows) ([]*client.Client, error) {
	defer rows.Close()
	items := []*client.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}
	return items, nil
}
