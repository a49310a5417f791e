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

package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
	"github.com/opentrusty/clientmanagement/internal/observability/tracing"
)

// Initializer handles InitializeCommand. Every step is safe to repeat, so
// a redelivered command converges to the same state and re-announces it.
type Initializer struct {
	opener      Opener
	publisher   event.Publisher
	auditLogger audit.Logger
	tracer      *tracing.Tracer
}

// NewInitializer creates a new tenant initializer
func NewInitializer(opener Opener, publisher event.Publisher, auditLogger audit.Logger, tracer *tracing.Tracer) *Initializer {
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &Initializer{
		opener:      opener,
		publisher:   publisher,
		auditLogger: auditLogger,
		tracer:      tracer,
	}
}

// Handle provisions the tenant database and publishes the completion
// event. Errors are returned for the bus to redeliver; no cleanup is done.
func (i *Initializer) Handle(ctx context.Context, cmd InitializeCommand) (err error) {
	ctx, span := i.tracer.Start(ctx, "tenant.initialize")
	span.SetAttributes(tracing.Tenant(cmd.TenantID))
	defer func() { tracing.End(span, err) }()

	if err := cmd.Validate(); err != nil {
		return err
	}

	log := slog.With(
		logger.Component("tenant_initializer"),
		logger.TenantID(cmd.TenantID),
		logger.CorrelationID(cmd.CorrelationID),
		logger.Database(cmd.DatabaseName),
	)
	log.InfoContext(ctx, "initializing client management")

	store, err := i.opener.Open(ctx, cmd.DatabaseName)
	if err != nil {
		return fmt.Errorf("failed to open tenant database: %w", err)
	}
	defer store.Close()

	state, err := store.EnsureSchema(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	if state == SchemaUnmanaged {
		log.WarnContext(ctx, "schema exists without migration history, leaving it untouched")
	} else {
		log.InfoContext(ctx, "schema ready", logger.String("schema_state", state.String()))
	}

	count, err := store.CountGroups(ctx, cmd.TenantID)
	if err != nil {
		return fmt.Errorf("failed to count groups: %w", err)
	}
	seeded := 0
	if count == 0 {
		seeds := clientgroup.DefaultGroups()
		if err := store.SeedGroups(ctx, cmd.TenantID, domain.SystemActor, seeds); err != nil {
			return fmt.Errorf("failed to seed default groups: %w", err)
		}
		seeded = len(seeds)
		log.InfoContext(ctx, "seeded default groups", slog.Int("count", seeded))
	} else {
		log.InfoContext(ctx, "groups already present, skipping seed", slog.Int("count", count))
	}

	now := time.Now().UTC()
	if err := i.publisher.Publish(ctx, event.ClientManagementInitialized{
		Metadata:      event.Correlated(cmd.TenantID, cmd.CorrelationID),
		SchemaCreated: true,
		InitializedAt: now,
	}); err != nil {
		return fmt.Errorf("failed to publish initialized event: %w", err)
	}

	i.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeTenantInitialized,
		TenantID:   cmd.TenantID,
		ActorID:    domain.SystemActor,
		Resource:   audit.ResourceTenant,
		ResourceID: cmd.TenantID,
		Timestamp:  now,
		Metadata: map[string]any{
			"tenant_name":   cmd.TenantName,
			"database":      cmd.DatabaseName,
			"schema_state":  state.String(),
			"groups_seeded": seeded,
		},
	})
	log.InfoContext(ctx, "client management initialized")
	return nil
}
