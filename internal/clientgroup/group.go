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

// Package clientgroup manages named buckets of clients and their members.
package clientgroup

import (
	"context"
	"time"

	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/domain"
)

// Group is a tenant-scoped named set of clients. Names are unique among
// live groups of a tenant.
type Group struct {
	ID          string
	TenantID    string
	Name        string
	Description *string
	IsDeleted   bool
	DeletedAt   *time.Time
	DeletedBy   *string
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// ClientCount is the number of live member clients, filled on reads.
	ClientCount int
}

// Membership joins a client to a group. Removal hard-deletes the row.
type Membership struct {
	ClientID string
	GroupID  string
	JoinedAt time.Time
	AddedBy  *string
}

// MembershipResult is the outcome of an insert attempt.
type MembershipResult int

const (
	MembershipCreated MembershipResult = iota
	MembershipExists
	MembershipParentMissing
)

// Seed is a group created for every newly provisioned tenant.
type Seed struct {
	Name        string
	Description string
}

// DefaultGroups are seeded once per tenant during initialization.
func DefaultGroups() []Seed {
	return []Seed{
		{Name: "Premium", Description: "Premium clients with comprehensive service packages"},
		{Name: "Standard", Description: "Standard clients with regular service packages"},
		{Name: "Basic", Description: "Basic clients with essential service packages"},
		{Name: "VIP", Description: "VIP clients with priority support and premium services"},
	}
}

// Repository persists groups and memberships. Groups are only ever
// soft-deleted.
type Repository interface {
	// Create assigns ID and timestamps. A live duplicate name is reported
	// as *domain.DuplicateError.
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, tenantID, id string) (*Group, error)
	// Update replaces name and description of the live row and bumps UpdatedAt.
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, tenantID, id, actor string) (bool, error)
	// List pages live groups ordered by name, searching name and description.
	List(ctx context.Context, tenantID string, req domain.PageRequest) ([]*Group, int, error)
	NameExists(ctx context.Context, tenantID, name, excludeID string) (bool, error)

	// AddMembership inserts the pair only if both the client and the group
	// are live in the tenant.
	AddMembership(ctx context.Context, tenantID, clientID, groupID, actor string) (MembershipResult, error)
	RemoveMembership(ctx context.Context, tenantID, clientID, groupID string) (bool, error)
	ListGroupClients(ctx context.Context, tenantID, groupID string) ([]*client.Client, error)
	ListClientGroups(ctx context.Context, tenantID, clientID string) ([]*Group, error)
	IsMember(ctx context.Context, tenantID, clientID, groupID string) (bool, error)
}

// ClientLookup resolves live clients of a tenant.
type ClientLookup interface {
	GetByID(ctx context.Context, tenantID, id string) (*client.Client, error)
}
