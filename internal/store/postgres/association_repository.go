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

	"github.com/jackc/pgx/v5"
	"github.com/opentrusty/clientmanagement/internal/association"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/id"
)

const (
	associationColumns = `id, user_id, client_id, tenant_id, assigned_at, assigned_by`
	associationIndex   = "ux_user_client_associations"
)

// AssociationRepository implements association.Repository
type AssociationRepository struct {
	db *DB
}

// NewAssociationRepository creates a new association repository
func NewAssociationRepository(db *DB) *AssociationRepository {
	return &AssociationRepository{db: db}
}

// Get retrieves the association of user and client in the tenant
func (r *AssociationRepository) Get(ctx context.Context, tenantID, userID, clientID string) (*association.Association, error) {
	if !validID(clientID) {
		return nil, notFound("association", userID+"/"+clientID)
	}
	a, err := scanAssociation(r.db.pool.QueryRow(ctx, `
		SELECT `+associationColumns+` FROM user_client_associations
		WHERE tenant_id = $1 AND user_id = $2 AND client_id = $3
	`, tenantID, userID, clientID))
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("association", userID+"/"+clientID)
		}
		return nil, fmt.Errorf("failed to get association: %w", err)
	}
	return a, nil
}

// Add inserts a new association
func (r *AssociationRepository) Add(ctx context.Context, a *association.Association) error {
	a.ID = id.NewUUIDv7()
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO user_client_associations (id, user_id, client_id, tenant_id, assigned_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING assigned_at
	`, a.ID, a.UserID, a.ClientID, a.TenantID, a.AssignedBy).Scan(&a.AssignedAt)
	if err != nil {
		if code, constraint := pgCode(err); code == uniqueViolation && constraint == associationIndex {
			return domain.NewDuplicate("user_client", a.UserID+"/"+a.ClientID)
		}
		return fmt.Errorf("failed to add association: %w", err)
	}
	return nil
}

// Remove hard-deletes the association
func (r *AssociationRepository) Remove(ctx context.Context, tenantID, userID, clientID string) (bool, error) {
	if !validID(clientID) {
		return false, nil
	}
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM user_client_associations
		WHERE tenant_id = $1 AND user_id = $2 AND client_id = $3
	`, tenantID, userID, clientID)
	if err != nil {
		return false, fmt.Errorf("failed to remove association: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByClient pages the associations of a client, newest first
func (r *AssociationRepository) ListByClient(ctx context.Context, tenantID, clientID string, req domain.PageRequest) ([]*association.Association, error) {
	if !validID(clientID) {
		return []*association.Association{}, nil
	}
	return r.list(ctx, `client_id = $2`, tenantID, clientID, req)
}

// CountByClient counts the associations of a client
func (r *AssociationRepository) CountByClient(ctx context.Context, tenantID, clientID string) (int, error) {
	if !validID(clientID) {
		return 0, nil
	}
	return r.count(ctx, `client_id = $2`, tenantID, clientID)
}

// ListByUser pages the associations of a user, newest first
func (r *AssociationRepository) ListByUser(ctx context.Context, tenantID, userID string, req domain.PageRequest) ([]*association.Association, error) {
	return r.list(ctx, `user_id = $2`, tenantID, userID, req)
}

// CountByUser counts the associations of a user
func (r *AssociationRepository) CountByUser(ctx context.Context, tenantID, userID string) (int, error) {
	return r.count(ctx, `user_id = $2`, tenantID, userID)
}

func (r *AssociationRepository) list(ctx context.Context, filter, tenantID, key string, req domain.PageRequest) ([]*association.Association, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+associationColumns+` FROM user_client_associations
		WHERE tenant_id = $1 AND `+filter+`
		ORDER BY assigned_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`, tenantID, key, req.PageSize, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list associations: %w", err)
	}
	defer rows.Close()

	items := []*association.Association{}
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan association: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read associations: %w", err)
	}
	return items, nil
}

func (r *AssociationRepository) count(ctx context.Context, filter, tenantID, key string) (int, error) {
	var n int
	err := r.db.pool.QueryRow(ctx,
		`SELECT count(*) FROM user_client_associations WHERE tenant_id = $1 AND `+filter,
		tenantID, key,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count associations: %w", err)
	}
	return n, nil
}

func scanAssociation(row pgx.Row) (*association.Association, error) {
	var a association.Association
	if err := row.Scan(&a.ID, &a.UserID, &a.ClientID, &a.TenantID, &a.AssignedAt, &a.AssignedBy); err != nil {
		return nil, err
	}
	return &a, nil
}
