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
	"sync"

	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/tenant"
)

// Cluster maps database names to stores, standing in for a database server.
type Cluster struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewCluster returns a cluster with no databases.
func NewCluster() *Cluster {
	return &Cluster{stores: make(map[string]*Store)}
}

// Database returns the store for name, creating it on first use.
func (c *Cluster) Database(name string) *Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stores[name]
	if !ok {
		s = New()
		c.stores[name] = s
	}
	return s
}

// Open implements tenant.Opener.
func (c *Cluster) Open(_ context.Context, databaseName string) (tenant.Store, error) {
	return c.Database(databaseName), nil
}

// EnsureSchema marks the store migrated. Only the first call reports a
// migration.
func (s *Store) EnsureSchema(context.Context) (tenant.SchemaState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.migrated {
		return tenant.SchemaUpToDate, nil
	}
	s.migrated = true
	return tenant.SchemaMigrated, nil
}

func (s *Store) CountGroups(_ context.Context, tenantID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.groups {
		if g.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (s *Store) SeedGroups(_ context.Context, tenantID, actor string, seeds []clientgroup.Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.Groups()
	for _, seed := range seeds {
		if r.nameTakenLocked(tenantID, seed.Name, "") {
			continue
		}
		desc := seed.Description
		createdBy := actor
		if err := r.createLocked(&clientgroup.Group{TenantID: tenantID, Name: seed.Name, Description: &desc, CreatedBy: &createdBy}); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the store lives as long as its cluster.
func (s *Store) Close() {}
