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
	"sort"

	"github.com/opentrusty/clientmanagement/internal/association"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/id"
)

// AssociationRepository implements association.Repository.
type AssociationRepository struct {
	s *Store
}

func (r *AssociationRepository) Get(_ context.Context, tenantID, userID, clientID string) (*association.Association, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a := r.findLocked(tenantID, userID, clientID); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, fmt.Errorf("association %s/%s: %w", userID, clientID, domain.ErrNotFound)
}

func (r *AssociationRepository) Add(_ context.Context, a *association.Association) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.findLocked(a.TenantID, a.UserID, a.ClientID) != nil {
		return domain.NewDuplicate("user_client", a.UserID+"/"+a.ClientID)
	}
	a.ID = id.NewUUIDv7()
	a.AssignedAt = r.s.now()
	cp := *a
	r.s.associations[a.ID] = &cp
	return nil
}

func (r *AssociationRepository) Remove(_ context.Context, tenantID, userID, clientID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.findLocked(tenantID, userID, clientID)
	if a == nil {
		return false, nil
	}
	delete(r.s.associations, a.ID)
	return true, nil
}

func (r *AssociationRepository) ListByClient(_ context.Context, tenantID, clientID string, req domain.PageRequest) ([]*association.Association, error) {
	return r.list(func(a *association.Association) bool {
		return a.TenantID == tenantID && a.ClientID == clientID
	}, req), nil
}

func (r *AssociationRepository) CountByClient(_ context.Context, tenantID, clientID string) (int, error) {
	return r.count(func(a *association.Association) bool {
		return a.TenantID == tenantID && a.ClientID == clientID
	}), nil
}

func (r *AssociationRepository) ListByUser(_ context.Context, tenantID, userID string, req domain.PageRequest) ([]*association.Association, error) {
	return r.list(func(a *association.Association) bool {
		return a.TenantID == tenantID && a.UserID == userID
	}, req), nil
}

func (r *AssociationRepository) CountByUser(_ context.Context, tenantID, userID string) (int, error) {
	return r.count(func(a *association.Association) bool {
		return a.TenantID == tenantID && a.UserID == userID
	}), nil
}

func (r *AssociationRepository) findLocked(tenantID, userID, clientID string) *association.Association {
	for _, a := range r.s.associations {
		if a.TenantID == tenantID && a.UserID == userID && a.ClientID == clientID {
			return a
		}
	}
	return nil
}

// list orders by assignment time, newest first.
func (r *AssociationRepository) list(match func(*association.Association) bool, req domain.PageRequest) []*association.Association {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*association.Association
	for _, a := range r.s.associations {
		if match(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].AssignedAt.After(out[j].AssignedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, req)
}

func (r *AssociationRepository) count(match func(*association.Association) bool) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, a := range r.s.associations {
		if match(a) {
			n++
		}
	}
	return n
}
