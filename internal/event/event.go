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

// Package event defines the integration events this service publishes and
// the command it consumes, together with their bus subjects.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// Source identifies this service on every outbound event.
const Source = "ClientManagementService"

// Subjects
const (
	SubjectClientCreated          = "clientmanagement.client.created"
	SubjectClientUpdated          = "clientmanagement.client.updated"
	SubjectClientDeleted          = "clientmanagement.client.deleted"
	SubjectGroupCreated           = "clientmanagement.group.created"
	SubjectGroupUpdated           = "clientmanagement.group.updated"
	SubjectGroupDeleted           = "clientmanagement.group.deleted"
	SubjectClientAddedToGroup     = "clientmanagement.group.client_added"
	SubjectClientRemovedFromGroup = "clientmanagement.group.client_removed"
	SubjectUserAssignedToClient   = "clientmanagement.association.assigned"
	SubjectUserRemovedFromClient  = "clientmanagement.association.removed"
	SubjectInitialized            = "clientmanagement.initialized"
	SubjectInitializeCommand      = "clientmanagement.commands.initialize"
	SubjectWildcard               = "clientmanagement.>"
)

// Event is an outbound integration event.
type Event interface {
	Subject() string
	Meta() Metadata
}

// Publisher delivers events to the bus. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Metadata is carried by every event.
type Metadata struct {
	CorrelationID string    `json:"correlationId"`
	Timestamp     time.Time `json:"timestamp"`
	TenantID      string    `json:"tenantId"`
	Source        string    `json:"source"`
}

// Meta returns the metadata itself so embedding types satisfy Event.
func (m Metadata) Meta() Metadata { return m }

// NewMetadata stamps a fresh correlation id.
func NewMetadata(tenantID string) Metadata {
	return Correlated(tenantID, uuid.NewString())
}

// Correlated stamps metadata that continues an existing correlation.
func Correlated(tenantID, correlationID string) Metadata {
	return Metadata{
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
		TenantID:      tenantID,
		Source:        Source,
	}
}

// Emit publishes e after the owning write has committed. A failure is
// logged and swallowed: the write stands and the event is lost.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		m := e.Meta()
		slog.ErrorContext(ctx, "failed to publish event",
			logger.Subject(e.Subject()),
			logger.TenantID(m.TenantID),
			logger.CorrelationID(m.CorrelationID),
			logger.Error(err),
		)
	}
}
