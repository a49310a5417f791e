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

// Package memory is an in-process store with the same contract as the
// postgres repositories. It backs the development driver and tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opentrusty/clientmanagement/internal/association"
	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/domain"
)

type memberKey struct {
	clientID string
	groupID  string
}

// Store holds every entity of one database.
type Store struct {
	mu           sync.RWMutex
	clients      map[string]*client.Client
	groups       map[string]*clientgroup.Group
	members      map[memberKey]clientgroup.Membership
	associations map[string]*association.Association
	migrated     bool
	now          func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		clients:      make(map[string]*client.Client),
		groups:       make(map[string]*clientgroup.Group),
		members:      make(map[memberKey]clientgroup.Membership),
		associations: make(map[string]*association.Association),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Clients returns the client repository view.
func (s *Store) Clients() *ClientRepository { return &ClientRepository{s: s} }

// Groups returns the group repository view.
func (s *Store) Groups() *GroupRepository { return &GroupRepository{s: s} }

// Associations returns the association repository view.
func (s *Store) Associations() *AssociationRepository { return &AssociationRepository{s: s} }

// MembershipCount returns the number of membership rows, live or not.
func (s *Store) MembershipCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

func paginate[T any](items []T, req domain.PageRequest) []T {
	off := req.Offset()
	if off < 0 || off >= len(items) {
		return []T{}
	}
	end := off + req.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}

func containsAny(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func sortByName[T any](items []T, name func(T) string, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ni, nj := name(items[i]), name(items[j])
		if ni != nj {
			return ni < nj
		}
		return id(items[i]) < id(items[j])
	})
}
