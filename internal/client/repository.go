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

package client

import (
	"context"

	"github.com/opentrusty/clientmanagement/internal/domain"
)

// Repository persists clients. Every method is tenant-scoped and default
// reads exclude soft-deleted rows. There is no hard delete.
type Repository interface {
	// Create assigns ID, CreatedAt and UpdatedAt and stores c. A unique
	// index violation is reported as *domain.DuplicateError.
	Create(ctx context.Context, c *Client) error

	// GetByID returns domain.ErrNotFound for other tenants and deleted rows.
	GetByID(ctx context.Context, tenantID, id string) (*Client, error)

	// GetByIDIncludingDeleted is the audit path; soft-deleted rows are
	// returned with their deletion fields set.
	GetByIDIncludingDeleted(ctx context.Context, tenantID, id string) (*Client, error)

	// Update replaces every mutable field of the live row matching
	// c.ID and c.TenantID, bumps UpdatedAt and fills CreatedAt.
	Update(ctx context.Context, c *Client) error

	// Delete soft-deletes the row. It reports false when no live row matched.
	Delete(ctx context.Context, tenantID, id, actor string) (bool, error)

	// List pages live clients ordered by company name. The search term is
	// a substring match over company name, ICE, RC, VAT and industry.
	List(ctx context.Context, tenantID string, req domain.PageRequest) ([]*Client, int, error)

	// IdentifierExists checks live clients of the tenant for value,
	// ignoring excludeID when set.
	IdentifierExists(ctx context.Context, tenantID string, field Identifier, value, excludeID string) (bool, error)
}
