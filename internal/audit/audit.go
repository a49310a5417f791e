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

package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Event types
const (
	TypeClientCreated      = "client_created"
	TypeClientUpdated      = "client_updated"
	TypeClientDeleted      = "client_deleted"
	TypeGroupCreated       = "group_created"
	TypeGroupUpdated       = "group_updated"
	TypeGroupDeleted       = "group_deleted"
	TypeMembershipAdded    = "membership_added"
	TypeMembershipRemoved  = "membership_removed"
	TypeUserAssigned       = "user_assigned"
	TypeUserUnassigned     = "user_unassigned"
	TypeTenantInitialized  = "tenant_initialized"
	TypeEventPublishFailed = "event_publish_failed"
)

// Resources
const (
	ResourceClient      = "client"
	ResourceGroup       = "client_group"
	ResourceMembership  = "client_group_membership"
	ResourceAssociation = "user_client_association"
	ResourceTenant      = "tenant"
)

// Event represents an auditable action
type Event struct {
	Type       string
	TenantID   string
	ActorID    string
	Resource   string
	ResourceID string
	Metadata   map[string]any
	Timestamp  time.Time
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event)
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates an audit logger writing through the default logger.
func NewSlogLogger() *SlogLogger {
	return &SlogLogger{}
}

// NewSlogLoggerWith writes audit records through l.
func NewSlogLoggerWith(l *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: l}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	attrs := []any{
		slog.String("audit_type", event.Type),
		slog.String("tenant_id", event.TenantID),
		slog.String("actor_id", event.ActorID),
		slog.String("resource", event.Resource),
		slog.Time("timestamp", event.Timestamp),
	}
	if event.ResourceID != "" {
		attrs = append(attrs, slog.String("resource_id", event.ResourceID))
	}

	if len(event.Metadata) > 0 {
		group := []any{}
		for k, v := range event.Metadata {
			if isSecret(k) {
				v = "[REDACTED]"
			}
			group = append(group, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("metadata", group...))
	}

	out := l.logger
	if out == nil {
		out = slog.Default()
	}
	out.InfoContext(ctx, "AUDIT_EVENT", append(attrs, slog.String("component", "audit"))...)
}

var secretMarkers = []string{"password", "secret", "token", "key", "authorization", "hash", "credential"}

// isSecret reports whether a metadata key likely holds a secret.
func isSecret(key string) bool {
	k := strings.ToLower(key)
	for _, s := range secretMarkers {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// Nop discards every event.
type Nop struct{}

func (Nop) Log(context.Context, Event) {}
