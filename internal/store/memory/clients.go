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

package memory

import (
	"context"
	"fmt"

	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/id"
)

// ClientRepository implements client.Repository.
type ClientRepository struct {
	s *Store
}

func (r *ClientRepository) Create(_ context.Context, c *client.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.uniqueLocked(c, ""); err != nil {
		return err
	}
	now := r.s.now()
	c.ID = id.NewUUIDv7()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, tenantID, clientID string) (*client.Client, error) {
	c, err := r.GetByIDIncludingDeleted(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, fmt.Errorf("client %s: %w", clientID, domain.ErrNotFound)
	}
	return c, nil
}

func (r *ClientRepository) GetByIDIncludingDeleted(_ context.Context, tenantID, clientID string) (*client.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clients[clientID]
	if !ok || c.TenantID != tenantID {
		return nil, fmt.Errorf("client %s: %w", clientID, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *ClientRepository) Update(_ context.Context, c *client.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.clients[c.ID]
	if !ok || cur.TenantID != c.TenantID || cur.IsDeleted {
		return fmt.Errorf("client %s: %w", c.ID, domain.ErrNotFound)
	}
	if err := r.uniqueLocked(c, c.ID); err != nil {
		return err
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = r.s.now()
	cp := *c
	r.s.clients[c.ID] = &cp
	return nil
}

func (r *ClientRepository) Delete(_ context.Context, tenantID, clientID, actor string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.clients[clientID]
	if !ok || c.TenantID != tenantID || c.IsDeleted {
		return false, nil
	}
	now := r.s.now()
	c.IsDeleted = true
	c.DeletedAt = &now
	c.DeletedBy = &actor
	c.UpdatedAt = now
	return true, nil
}

func (r *ClientRepository) List(_ context.Context, tenantID string, req domain.PageRequest) ([]*client.Client, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*client.Client
	for _, c := range r.s.clients {
		if c.TenantID != tenantID || c.IsDeleted {
			continue
		}
		if req.Search != "" && !containsAny(req.Search,
			c.CompanyName, deref(c.ICENumber), deref(c.RCNumber), deref(c.VATNumber), c.Industry) {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}
	sortByName(matched,
		func(c *client.Client) string { return c.CompanyName },
		func(c *client.Client) string { return c.ID })
	return paginate(matched, req), len(matched), nil
}

func (r *ClientRepository) IdentifierExists(_ context.Context, tenantID string, field client.Identifier, value, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.existsLocked(tenantID, field, value, excludeID), nil
}

func (r *ClientRepository) existsLocked(tenantID string, field client.Identifier, value, excludeID string) bool {
	for _, c := range r.s.clients {
		if c.TenantID != tenantID || c.IsDeleted || c.ID == excludeID {
			continue
		}
		if c.IdentifierValue(field) == value {
			return true
		}
	}
	return false
}

// uniqueLocked mirrors the partial unique indexes of the relational schema.
func (r *ClientRepository) uniqueLocked(c *client.Client, excludeID string) error {
	for _, field := range client.Identifiers {
		v := c.IdentifierValue(field)
		if v != "" && r.existsLocked(c.TenantID, field, v, excludeID) {
			return domain.NewDuplicate(string(field), v)
		}
	}
	return nil
}
