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
	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/id"
)

// GroupRepository implements clientgroup.Repository.
type GroupRepository struct {
	s *Store
}

func (r *GroupRepository) Create(_ context.Context, g *clientgroup.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.createLocked(g)
}

func (r *GroupRepository) createLocked(g *clientgroup.Group) error {
	if r.nameTakenLocked(g.TenantID, g.Name, "") {
		return domain.NewDuplicate("name", g.Name)
	}
	now := r.s.now()
	g.ID = id.NewUUIDv7()
	g.CreatedAt = now
	g.UpdatedAt = now
	cp := *g
	r.s.groups[g.ID] = &cp
	return nil
}

func (r *GroupRepository) GetByID(_ context.Context, tenantID, groupID string) (*clientgroup.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.liveLocked(tenantID, groupID)
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, domain.ErrNotFound)
	}
	return r.withCountLocked(g), nil
}

func (r *GroupRepository) Update(_ context.Context, g *clientgroup.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.liveLocked(g.TenantID, g.ID)
	if !ok {
		return fmt.Errorf("group %s: %w", g.ID, domain.ErrNotFound)
	}
	if r.nameTakenLocked(g.TenantID, g.Name, g.ID) {
		return domain.NewDuplicate("name", g.Name)
	}
	cur.Name = g.Name
	cur.Description = g.Description
	cur.UpdatedAt = r.s.now()
	g.CreatedAt = cur.CreatedAt
	g.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *GroupRepository) Delete(_ context.Context, tenantID, groupID, actor string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.liveLocked(tenantID, groupID)
	if !ok {
		return false, nil
	}
	now := r.s.now()
	g.IsDeleted = true
	g.DeletedAt = &now
	g.DeletedBy = &actor
	g.UpdatedAt = now
	return true, nil
}

func (r *GroupRepository) List(_ context.Context, tenantID string, req domain.PageRequest) ([]*clientgroup.Group, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []*clientgroup.Group
	for _, g := range r.s.groups {
		if g.TenantID != tenantID || g.IsDeleted {
			continue
		}
		if req.Search != "" && !containsAny(req.Search, g.Name, deref(g.Description)) {
			continue
		}
		matched = append(matched, r.withCountLocked(g))
	}
	sortByName(matched,
		func(g *clientgroup.Group) string { return g.Name },
		func(g *clientgroup.Group) string { return g.ID })
	return paginate(matched, req), len(matched), nil
}

func (r *GroupRepository) NameExists(_ context.Context, tenantID, name, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.nameTakenLocked(tenantID, name, excludeID), nil
}

func (r *GroupRepository) AddMembership(_ context.Context, tenantID, clientID, groupID, actor string) (clientgroup.MembershipResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.liveLocked(tenantID, groupID); !ok {
		return clientgroup.MembershipParentMissing, nil
	}
	c, ok := r.s.clients[clientID]
	if !ok || c.TenantID != tenantID || c.IsDeleted {
		return clientgroup.MembershipParentMissing, nil
	}
	key := memberKey{clientID: clientID, groupID: groupID}
	if _, ok := r.s.members[key]; ok {
		return clientgroup.MembershipExists, nil
	}
	r.s.members[key] = clientgroup.Membership{
		ClientID: clientID,
		GroupID:  groupID,
		JoinedAt: r.s.now(),
		AddedBy:  &actor,
	}
	return clientgroup.MembershipCreated, nil
}

func (r *GroupRepository) RemoveMembership(_ context.Context, tenantID, clientID, groupID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.groups[groupID]
	if !ok || g.TenantID != tenantID {
		return false, nil
	}
	key := memberKey{clientID: clientID, groupID: groupID}
	if _, ok := r.s.members[key]; !ok {
		return false, nil
	}
	delete(r.s.members, key)
	return true, nil
}

func (r *GroupRepository) ListGroupClients(_ context.Context, tenantID, groupID string) ([]*client.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*client.Client
	for key := range r.s.members {
		if key.groupID != groupID {
			continue
		}
		c, ok := r.s.clients[key.clientID]
		if !ok || c.TenantID != tenantID || c.IsDeleted {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortByName(out,
		func(c *client.Client) string { return c.CompanyName },
		func(c *client.Client) string { return c.ID })
	if out == nil {
		out = []*client.Client{}
	}
	return out, nil
}

func (r *GroupRepository) ListClientGroups(_ context.Context, tenantID, clientID string) ([]*clientgroup.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*clientgroup.Group
	for key := range r.s.members {
		if key.clientID != clientID {
			continue
		}
		g, ok := r.liveLocked(tenantID, key.groupID)
		if !ok {
			continue
		}
		out = append(out, r.withCountLocked(g))
	}
	sortByName(out,
		func(g *clientgroup.Group) string { return g.Name },
		func(g *clientgroup.Group) string { return g.ID })
	if out == nil {
		out = []*clientgroup.Group{}
	}
	return out, nil
}

func (r *GroupRepository) IsMember(_ context.Context, tenantID, clientID, groupID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.liveLocked(tenantID, groupID); !ok {
		return false, nil
	}
	_, ok := r.s.members[memberKey{clientID: clientID, groupID: groupID}]
	return ok, nil
}

func (r *GroupRepository) liveLocked(tenantID, groupID string) (*clientgroup.Group, bool) {
	g, ok := r.s.groups[groupID]
	if !ok || g.TenantID != tenantID || g.IsDeleted {
		return nil, false
	}
	return g, true
}

func (r *GroupRepository) nameTakenLocked(tenantID, name, excludeID string) bool {
	for _, g := range r.s.groups {
		if g.TenantID == tenantID && !g.IsDeleted && g.ID != excludeID && g.Name == name {
			return true
		}
	}
	return false
}

func (r *GroupRepository) withCountLocked(g *clientgroup.Group) *clientgroup.Group {
	cp := *g
	cp.ClientCount = 0
	for key := range r.s.members {
		if key.groupID != g.ID {
			continue
		}
		if c, ok := r.s.clients[key.clientID]; ok && !c.IsDeleted {
			cp.ClientCount++
		}
	}
	return &cp
}
