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

package clientgroup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// Service provides group and membership business logic
type Service struct {
	repo        Repository
	clients     ClientLookup
	publisher   event.Publisher
	auditLogger audit.Logger
}

// NewService creates a new group service
func NewService(repo Repository, clients ClientLookup, publisher event.Publisher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		clients:     clients,
		publisher:   publisher,
		auditLogger: auditLogger,
	}
}

// Create stores a new group with a tenant-unique name.
func (s *Service) Create(ctx context.Context, tenantID, actor, name, description string) (*Group, error) {
	actor = domain.ActorOrSystem(actor)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidation("name", "is required")
	}

	exists, err := s.repo.NameExists(ctx, tenantID, name, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check group name: %w", err)
	}
	if exists {
		return nil, domain.NewDuplicate("name", name)
	}

	g := &Group{TenantID: tenantID, Name: name, Description: optional(description), CreatedBy: &actor}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.InfoContext(ctx, "group created", logger.TenantID(tenantID), logger.GroupID(g.ID), logger.Actor(actor))
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeGroupCreated,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceGroup,
		ResourceID: g.ID,
		Metadata:   map[string]any{"name": g.Name},
	})
	event.Emit(ctx, s.publisher, event.GroupCreated{
		Metadata:    event.NewMetadata(tenantID),
		GroupID:     g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
		CreatedBy:   actor,
	})
	return g, nil
}

// Get returns a live group with its member count.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Group, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// Update replaces name and description. Name uniqueness is only re-checked
// when the name changes.
func (s *Service) Update(ctx context.Context, tenantID, id, actor, name, description string) (*Group, error) {
	actor = domain.ActorOrSystem(actor)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidation("name", "is required")
	}

	current, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if current.Name != name {
		exists, err := s.repo.NameExists(ctx, tenantID, name, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check group name: %w", err)
		}
		if exists {
			return nil, domain.NewDuplicate("name", name)
		}
	}

	current.Name = name
	current.Description = optional(description)
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	slog.InfoContext(ctx, "group updated", logger.TenantID(tenantID), logger.GroupID(id), logger.Actor(actor))
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeGroupUpdated,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceGroup,
		ResourceID: id,
	})
	event.Emit(ctx, s.publisher, event.GroupUpdated{
		Metadata:    event.NewMetadata(tenantID),
		GroupID:     id,
		Name:        current.Name,
		Description: current.Description,
		UpdatedAt:   current.UpdatedAt,
		UpdatedBy:   actor,
	})
	return current, nil
}

// Delete soft-deletes the group. Memberships are kept.
func (s *Service) Delete(ctx context.Context, tenantID, id, actor string) (bool, error) {
	actor = domain.ActorOrSystem(actor)
	ok, err := s.repo.Delete(ctx, tenantID, id, actor)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}
	if !ok {
		return false, nil
	}

	now := time.Now().UTC()
	slog.InfoContext(ctx, "group deleted", logger.TenantID(tenantID), logger.GroupID(id), logger.Actor(actor))
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeGroupDeleted,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceGroup,
		ResourceID: id,
		Timestamp:  now,
	})
	event.Emit(ctx, s.publisher, event.GroupDeleted{
		Metadata:  event.NewMetadata(tenantID),
		GroupID:   id,
		DeletedAt: now,
		DeletedBy: actor,
	})
	return true, nil
}

// List returns one page of live groups.
func (s *Service) List(ctx context.Context, tenantID string, req domain.PageRequest) (domain.Page[*Group], error) {
	req = req.Normalize()
	items, total, err := s.repo.List(ctx, tenantID, req)
	if err != nil {
		return domain.Page[*Group]{}, fmt.Errorf("failed to list groups: %w", err)
	}
	return domain.NewPage(items, total, req), nil
}

// AddClient puts the client into the group. An existing membership is a
// success without a new event; a missing client or group reports false.
func (s *Service) AddClient(ctx context.Context, tenantID, groupID, clientID, actor string) (bool, error) {
	actor = domain.ActorOrSystem(actor)

	g, err := s.repo.GetByID(ctx, tenantID, groupID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c, err := s.clients.GetByID(ctx, tenantID, clientID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	res, err := s.repo.AddMembership(ctx, tenantID, clientID, groupID, actor)
	if err != nil {
		return false, fmt.Errorf("failed to add client to group: %w", err)
	}
	switch res {
	case MembershipParentMissing:
		return false, nil
	case MembershipExists:
		return true, nil
	}

	now := time.Now().UTC()
	slog.InfoContext(ctx, "client added to group",
		logger.TenantID(tenantID), logger.GroupID(groupID), logger.ClientID(clientID), logger.Actor(actor))
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeMembershipAdded,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceMembership,
		ResourceID: groupID,
		Metadata:   map[string]any{"client_id": clientID},
	})
	event.Emit(ctx, s.publisher, event.ClientAddedToGroup{
		Metadata:   event.NewMetadata(tenantID),
		ClientID:   clientID,
		ClientName: c.CompanyName,
		GroupID:    groupID,
		GroupName:  g.Name,
		AddedAt:    now,
		AddedBy:    actor,
	})
	return true, nil
}

// RemoveClient deletes the membership row. It reports false when there was
// none.
func (s *Service) RemoveClient(ctx context.Context, tenantID, groupID, clientID, actor string) (bool, error) {
	actor = domain.ActorOrSystem(actor)
	ok, err := s.repo.RemoveMembership(ctx, tenantID, clientID, groupID)
	if err != nil {
		return false, fmt.Errorf("failed to remove client from group: %w", err)
	}
	if !ok {
		return false, nil
	}

	slog.InfoContext(ctx, "client removed from group",
		logger.TenantID(tenantID), logger.GroupID(groupID), logger.ClientID(clientID), logger.Actor(actor))
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeMembershipRemoved,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceMembership,
		ResourceID: groupID,
		Metadata:   map[string]any{"client_id": clientID},
	})
	event.Emit(ctx, s.publisher, event.ClientRemovedFromGroup{
		Metadata:  event.NewMetadata(tenantID),
		ClientID:  clientID,
		GroupID:   groupID,
		RemovedAt: time.Now().UTC(),
		RemovedBy: actor,
	})
	return true, nil
}

// GroupClients lists the live clients of a live group.
func (s *Service) GroupClients(ctx context.Context, tenantID, groupID string) ([]*client.Client, error) {
	if _, err := s.repo.GetByID(ctx, tenantID, groupID); err != nil {
		return nil, err
	}
	return s.repo.ListGroupClients(ctx, tenantID, groupID)
}

// ClientGroups lists the live groups a live client belongs to.
func (s *Service) ClientGroups(ctx context.Context, tenantID, clientID string) ([]*Group, error) {
	if _, err := s.clients.GetByID(ctx, tenantID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListClientGroups(ctx, tenantID, clientID)
}

// IsClientInGroup reports membership without loading either side.
func (s *Service) IsClientInGroup(ctx context.Context, tenantID, groupID, clientID string) (bool, error) {
	return s.repo.IsMember(ctx, tenantID, clientID, groupID)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
