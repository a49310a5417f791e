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

// Package association assigns identity-service users to clients.
package association

import (
	"context"
	"time"

	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/domain"
)

// Association links an external user to a client. A (tenant, user, client)
// triple appears at most once.
type Association struct {
	ID         string
	UserID     string
	ClientID   string
	TenantID   string
	AssignedAt time.Time
	AssignedBy string
}

// Repository persists associations. Removal is a hard delete.
type Repository interface {
	Get(ctx context.Context, tenantID, userID, clientID string) (*Association, error)
	// Add assigns ID and AssignedAt. A second row for the same triple is
	// reported as *domain.DuplicateError.
	Add(ctx context.Context, a *Association) error
	Remove(ctx context.Context, tenantID, userID, clientID string) (bool, error)
	ListByClient(ctx context.Context, tenantID, clientID string, req domain.PageRequest) ([]*Association, error)
	CountByClient(ctx context.Context, tenantID, clientID string) (int, error)
	ListByUser(ctx context.Context, tenantID, userID string, req domain.PageRequest) ([]*Association, error)
	CountByUser(ctx context.Context, tenantID, userID string) (int, error)
}

// ClientLookup resolves live clients of a tenant.
type ClientLookup interface {
	GetByID(ctx context.Context, tenantID, id string) (*client.Client, error)
}

// UserDirectory answers whether a user is known to the identity service.
type UserDirectory interface {
	UserExists(ctx context.Context, tenantID, userID string) (bool, error)
}
