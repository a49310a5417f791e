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
	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/id"
)

// groupColumns selects a group with the number of its live member clients.
const groupColumns = `
	g.id, g.tenant_id, g.name, g.description, g.deleted_at, g.deleted_by, g.created_by, g.created_at, g.updated_at,
	(SELECT count(*) FROM client_group_memberships m
		JOIN clients c ON c.id = m.client_id AND c.deleted_at IS NULL
		WHERE m.group_id = g.id)`

const groupNameIndex = "ux_client_groups_name"

// GroupRepository implements clientgroup.Repository
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a new group
func (r *GroupRepository) Create(ctx context.Context, g *clientgroup.Group) error {
	g.ID = id.NewUUIDv7()
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO client_groups (id, tenant_id, name, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, g.ID, g.TenantID, g.Name, g.Description, g.CreatedBy).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return groupWriteError(err, g, "create")
	}
	return nil
}

// GetByID retrieves a live group of the tenant
func (r *GroupRepository) GetByID(ctx context.Context, tenantID, groupID string) (*clientgroup.Group, error) {
	if !validID(groupID) {
		return nil, notFound("group", groupID)
	}
	g, err := scanGroup(r.db.pool.QueryRow(ctx, `
		SELECT `+groupColumns+` FROM client_groups g
		WHERE g.id = $1 AND g.tenant_id = $2 AND g.deleted_at IS NULL
	`, groupID, tenantID))
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("group", groupID)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// Update replaces name and description of a live group
func (r *GroupRepository) Update(ctx context.Context, g *clientgroup.Group) error {
	if !validID(g.ID) {
		return notFound("group", g.ID)
	}
	err := r.db.pool.QueryRow(ctx, `
		UPDATE client_groups SET name = $3, description = $4, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`, g.ID, g.TenantID, g.Name, g.Description).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return notFound("group", g.ID)
		}
		return groupWriteError(err, g, "update")
	}
	return nil
}

// Delete soft-deletes a live group. Memberships are kept.
func (r *GroupRepository) Delete(ctx context.Context, tenantID, groupID, actor string) (bool, error) {
	if !validID(groupID) {
		return false, nil
	}
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE client_groups SET deleted_at = now(), deleted_by = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, groupID, tenantID, actor)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List pages live groups ordered by name
func (r *GroupRepository) List(ctx context.Context, tenantID string, req domain.PageRequest) ([]*clientgroup.Group, int, error) {
	where := `g.tenant_id = $1 AND g.deleted_at IS NULL`
	args := []any{tenantID}
	if req.Search != "" {
		args = append(args, likePattern(req.Search))
		where += ` AND (g.name LIKE $2 OR g.description LIKE $2)`
	}

	var total int
	if err := r.db.pool.QueryRow(ctx, `SELECT count(*) FROM client_groups g WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	n := len(args)
	args = append(args, req.PageSize, req.Offset())
	rows, err := r.db.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM client_groups g WHERE %s ORDER BY g.name, g.id LIMIT $%d OFFSET $%d`,
		groupColumns, where, n+1, n+2,
	), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	items, err := collectGroups(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// NameExists reports whether another live group of the tenant uses name
func (r *GroupRepository) NameExists(ctx context.Context, tenantID, name, excludeID string) (bool, error) {
	var exists bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM client_groups
			WHERE tenant_id = $1 AND name = $2 AND deleted_at IS NULL AND id::text <> $3
		)`, tenantID, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group name: %w", err)
	}
	return exists, nil
}

// AddMembership inserts the pair in one statement guarded by both parents
// being live in the tenant.
func (r *GroupRepository) AddMembership(ctx context.Context, tenantID, clientID, groupID, actor string) (clientgroup.MembershipResult, error) {
	if !validID(clientID) || !validID(groupID) {
		return clientgroup.MembershipParentMissing, nil
	}
	var parents, inserted int
	err := r.db.pool.QueryRow(ctx, `
		WITH parents AS (
			SELECT c.id AS client_id, g.id AS group_id
			FROM clients c, client_groups g
			WHERE c.id = $1 AND g.id = $2
				AND c.tenant_id = $3 AND g.tenant_id = $3
				AND c.deleted_at IS NULL AND g.deleted_at IS NULL
		), ins AS (
			INSERT INTO client_group_memberships (client_id, group_id, added_by)
			SELECT client_id, group_id, $4 FROM parents
			ON CONFLICT (client_id, group_id) DO NOTHING
			RETURNING 1
		)
		SELECT (SELECT count(*) FROM parents), (SELECT count(*) FROM ins)
	`, clientID, groupID, tenantID, actor).Scan(&parents, &inserted)
	if err != nil {
		if code, _ := pgCode(err); code == foreignKeyViolation {
			// a parent was hard-removed between the check and the insert
			return clientgroup.MembershipParentMissing, nil
		}
		return 0, fmt.Errorf("failed to add membership: %w", err)
	}
	switch {
	case parents == 0:
		return clientgroup.MembershipParentMissing, nil
	case inserted == 0:
		return clientgroup.MembershipExists, nil
	default:
		return clientgroup.MembershipCreated, nil
	}
}

// RemoveMembership hard-deletes the membership row
func (r *GroupRepository) RemoveMembership(ctx context.Context, tenantID, clientID, groupID string) (bool, error) {
	if !validID(clientID) || !validID(groupID) {
		return false, nil
	}
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM client_group_memberships m
		USING client_groups g
		WHERE m.group_id = g.id AND g.tenant_id = $3
			AND m.client_id = $1 AND m.group_id = $2
	`, clientID, groupID, tenantID)
	if err != nil {
		return false, fmt.Errorf("failed to remove membership: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListGroupClients lists the live clients of a group ordered by name
func (r *GroupRepository) ListGroupClients(ctx context.Context, tenantID, groupID string) ([]*client.Client, error) {
	if !validID(groupID) {
		return []*client.Client{}, nil
	}
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+prefixed("c", clientColumns)+`
		FROM clients c
		JOIN client_group_memberships m ON m.client_id = c.id
		WHERE m.group_id = $1 AND c.tenant_id = $2 AND c.deleted_at IS NULL
		ORDER BY c.company_name, c.id
	`, groupID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group clients: %w", err)
	}
	return collectClients(rows)
}

// ListClientGroups lists the live groups a client belongs to ordered by name
func (r *GroupRepository) ListClientGroups(ctx context.Context, tenantID, clientID string) ([]*clientgroup.Group, error) {
	if !validID(clientID) {
		return []*clientgroup.Group{}, nil
	}
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+groupColumns+`
		FROM client_groups g
		JOIN client_group_memberships m ON m.group_id = g.id
		WHERE m.client_id = $1 AND g.tenant_id = $2 AND g.deleted_at IS NULL
		ORDER BY g.name, g.id
	`, clientID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client groups: %w", err)
	}
	return collectGroups(rows)
}

// IsMember reports whether the client belongs to the live group
func (r *GroupRepository) IsMember(ctx context.Context, tenantID, clientID, groupID string) (bool, error) {
	if !validID(clientID) || !validID(groupID) {
		return false, nil
	}
	var exists bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM client_group_memberships m
			JOIN client_groups g ON g.id = m.group_id
			WHERE m.client_id = $1 AND m.group_id = $2
				AND g.tenant_id = $3 AND g.deleted_at IS NULL
		)`, clientID, groupID, tenantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func groupWriteError(err error, g *clientgroup.Group, op string) error {
	if code, constraint := pgCode(err); code == uniqueViolation && constraint == groupNameIndex {
		return domain.NewDuplicate("name", g.Name)
	}
	return fmt.Errorf("failed to %s group: %w", op, err)
}

func scanGroup(row pgx.Row) (*clientgroup.Group, error) {
	var g clientgroup.Group
	var deletedAt *time.Time
	err := row.Scan(
		&g.ID, &g.TenantID, &g.Name, &g.Description, &deletedAt, &g.DeletedBy,
		&g.CreatedBy, &g.CreatedAt, &g.UpdatedAt, &g.ClientCount,
	)
	if err != nil {
		return nil, err
	}
	g.DeletedAt = deletedAt
	g.IsDeleted = deletedAt != nil
	return &g, nil
}

func collectGroups(rows pgx.Rows) ([]*clientgroup.Group, error) {
	defer rows.Close()
	items := []*clientgroup.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}
	return items, nil
}
