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

package association

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// ErrUserNotFound is returned when the identity service does not know the user.
var ErrUserNotFound = fmt.Errorf("user: %w", domain.ErrNotFound)

// MaxUserIDLength bounds the opaque user ids issued by the identity provider.
const MaxUserIDLength = 255

// NormalizeUserID trims an identity-provider user id. Any non-blank string
// up to MaxUserIDLength bytes is accepted; the format belongs to the provider.
func NormalizeUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.NewValidation("user_id", "is required")
	}
	if len(userID) > MaxUserIDLength {
		return "", domain.NewValidation("user_id", fmt.Sprintf("must be at most %d bytes", MaxUserIDLength))
	}
	return userID, nil
}

// Service provides user-client assignment logic
type Service struct {
	repo        Repository
	clients     ClientLookup
	users       UserDirectory
	publisher   event.Publisher
	auditLogger audit.Logger
}

// NewService creates a new association service
func NewService(repo Repository, clients ClientLookup, users UserDirectory, publisher event.Publisher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		clients:     clients,
		users:       users,
		publisher:   publisher,
		auditLogger: auditLogger,
	}
}

// Assign links the user to the client. Re-assigning returns the existing
// association unchanged and publishes nothing.
func (s *Service) Assign(ctx context.Context, tenantID, userID, clientID, actor string) (*Association, error) {
	actor = domain.ActorOrSystem(actor)
	userID, err := NormalizeUserID(userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.clients.GetByID(ctx, tenantID, clientID); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, tenantID, userID, clientID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up association: %w", err)
	}

	known, err := s.users.UserExists(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	if !known {
		return nil, ErrUserNotFound
	}

	a := &Association{UserID: userID, ClientID: clientID, TenantID: tenantID, AssignedBy: actor}
	if err := s.repo.Add(ctx, a); err != nil {
		if domain.IsDuplicate(err) {
			// lost a race with a concurrent assign of the same pair
			return s.repo.Get(ctx, tenantID, userID, clientID)
		}
		return nil, fmt.Errorf("failed to assign user: %w", err)
	}

	slog.InfoContext(ctx, "user assigned to client",
		logger.TenantID(tenantID), logger.UserID(userID), logger.ClientID(clientID), logger.Actor(actor))
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeUserAssigned,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceAssociation,
		ResourceID: a.ID,
		Metadata:   map[string]any{"user_id": userID, "client_id": clientID},
	})
	event.Emit(ctx, s.publisher, event.UserAssignedToClient{
		Metadata:      event.NewMetadata(tenantID),
		AssociationID: a.ID,
		UserID:        userID,
		ClientID:      clientID,
		AssignedAt:    a.AssignedAt,
		AssignedBy:    actor,
	})
	return a, nil
}

// Remove deletes the association. It reports false, publishing nothing,
// when there was none.
func (s *Service) Remove(ctx context.Context, tenantID, userID, clientID, actor string) (bool, error) {
	actor = domain.ActorOrSystem(actor)
	userID, err := NormalizeUserID(userID)
	if err != nil {
		return false, err
	}
	ok, err := s.repo.Remove(ctx, tenantID, userID, clientID)
	if err != nil {
		return false, fmt.Errorf("failed to remove user from client: %w", err)
	}
	if !ok {
		return false, nil
	}

	slog.InfoContext(ctx, "user removed from client",
		logger.TenantID(tenantID), logger.UserID(userID), logger.ClientID(clientID), logger.Actor(actor))
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserUnassigned,
		TenantID: tenantID,
		ActorID:  actor,
		Resource: audit.ResourceAssociation,
		Metadata: map[string]any{"user_id": userID, "client_id": clientID},
	})
	event.Emit(ctx, s.publisher, event.UserRemovedFromClient{
		Metadata:  event.NewMetadata(tenantID),
		UserID:    userID,
		ClientID:  clientID,
		RemovedAt: time.Now().UTC(),
		RemovedBy: actor,
	})
	return true, nil
}

// ClientUsers pages the users assigned to a client.
func (s *Service) ClientUsers(ctx context.Context, tenantID, clientID string, req domain.PageRequest) (domain.Page[*Association], error) {
	req = req.Normalize()
	items, err := s.repo.ListByClient(ctx, tenantID, clientID, req)
	if err != nil {
		return domain.Page[*Association]{}, fmt.Errorf("failed to list client users: %w", err)
	}
	total, err := s.repo.CountByClient(ctx, tenantID, clientID)
	if err != nil {
		return domain.Page[*Association]{}, fmt.Errorf("failed to count client users: %w", err)
	}
	return domain.NewPage(items, total, req), nil
}

// UserClients pages the clients a user is assigned to.
func (s *Service) UserClients(ctx context.Context, tenantID, userID string, req domain.PageRequest) (domain.Page[*Association], error) {
	userID, err := NormalizeUserID(userID)
	if err != nil {
		return domain.Page[*Association]{}, err
	}
	req = req.Normalize()
	items, err := s.repo.ListByUser(ctx, tenantID, userID, req)
	if err != nil {
		return domain.Page[*Association]{}, fmt.Errorf("failed to list user clients: %w", err)
	}
	total, err := s.repo.CountByUser(ctx, tenantID, userID)
	if err != nil {
		return domain.Page[*Association]{}, fmt.Errorf("failed to count user clients: %w", err)
	}
	return domain.NewPage(items, total, req), nil
}
