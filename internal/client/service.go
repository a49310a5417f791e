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

package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// Options tune input validation.
type Options struct {
	// StrictIdentifiers enforces ICE/RC/VAT/CNSS formats on write.
	StrictIdentifiers bool
}

// Service provides client business logic
type Service struct {
	repo        Repository
	publisher   event.Publisher
	auditLogger audit.Logger
	opts        Options
}

// NewService creates a new client service
func NewService(repo Repository, publisher event.Publisher, auditLogger audit.Logger, opts Options) *Service {
	return &Service{
		repo:        repo,
		publisher:   publisher,
		auditLogger: auditLogger,
		opts:        opts,
	}
}

// Create stores a new client after per-tenant identifier uniqueness checks.
func (s *Service) Create(ctx context.Context, tenantID, actor string, in Input) (*Client, error) {
	actor = domain.ActorOrSystem(actor)

	c := &Client{TenantID: tenantID, Status: StatusActive}
	if err := s.apply(c, in, true); err != nil {
		return nil, err
	}
	if err := s.checkIdentifiers(ctx, c, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	slog.InfoContext(ctx, "client created",
		logger.TenantID(tenantID),
		logger.ClientID(c.ID),
		logger.Actor(actor),
	)
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeClientCreated,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceClient,
		ResourceID: c.ID,
		Metadata:   map[string]any{"company_name": c.CompanyName},
	})
	event.Emit(ctx, s.publisher, event.ClientCreated{
		Metadata:       event.NewMetadata(tenantID),
		ClientSnapshot: c.Snapshot(),
		CreatedAt:      c.CreatedAt,
		CreatedBy:      actor,
	})

	return c, nil
}

// Get returns a live client of the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Client, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// GetIncludingDeleted returns the client even when soft-deleted.
func (s *Service) GetIncludingDeleted(ctx context.Context, tenantID, id string) (*Client, error) {
	return s.repo.GetByIDIncludingDeleted(ctx, tenantID, id)
}

// Update replaces every mutable field of the client. Identifier checks
// exclude the client itself.
func (s *Service) Update(ctx context.Context, tenantID, id, actor string, in Input) (*Client, error) {
	actor = domain.ActorOrSystem(actor)

	c := &Client{ID: id, TenantID: tenantID}
	if err := s.apply(c, in, false); err != nil {
		return nil, err
	}
	if err := s.checkIdentifiers(ctx, c, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	slog.InfoContext(ctx, "client updated",
		logger.TenantID(tenantID),
		logger.ClientID(id),
		logger.Actor(actor),
	)
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeClientUpdated,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceClient,
		ResourceID: id,
		Metadata:   map[string]any{"status": string(c.Status)},
	})
	event.Emit(ctx, s.publisher, event.ClientUpdated{
		Metadata:       event.NewMetadata(tenantID),
		ClientSnapshot: c.Snapshot(),
		UpdatedAt:      c.UpdatedAt,
		UpdatedBy:      actor,
	})

	return c, nil
}

// Delete soft-deletes the client. It reports false, and publishes nothing,
// when no live client matched.
func (s *Service) Delete(ctx context.Context, tenantID, id, actor string) (bool, error) {
	actor = domain.ActorOrSystem(actor)

	ok, err := s.repo.Delete(ctx, tenantID, id, actor)
	if err != nil {
		return false, fmt.Errorf("failed to delete client: %w", err)
	}
	if !ok {
		return false, nil
	}

	now := time.Now().UTC()
	slog.InfoContext(ctx, "client deleted",
		logger.TenantID(tenantID),
		logger.ClientID(id),
		logger.Actor(actor),
	)
	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeClientDeleted,
		TenantID:   tenantID,
		ActorID:    actor,
		Resource:   audit.ResourceClient,
		ResourceID: id,
		Timestamp:  now,
	})
	event.Emit(ctx, s.publisher, event.ClientDeleted{
		Metadata:  event.NewMetadata(tenantID),
		ClientID:  id,
		DeletedAt: now,
		DeletedBy: actor,
	})

	return true, nil
}

// List returns one page of live clients.
func (s *Service) List(ctx context.Context, tenantID string, req domain.PageRequest) (domain.Page[*Client], error) {
	req = req.Normalize()
	items, total, err := s.repo.List(ctx, tenantID, req)
	if err != nil {
		return domain.Page[*Client]{}, fmt.Errorf("failed to list clients: %w", err)
	}
	return domain.NewPage(items, total, req), nil
}

// apply copies normalized input onto c. Create defaults an empty status to
// Active; update requires one.
func (s *Service) apply(c *Client, in Input, creating bool) error {
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		return domain.NewValidation("company_name", "is required")
	}
	c.CompanyName = name
	c.Country = strings.TrimSpace(in.Country)
	c.Address = strings.TrimSpace(in.Address)
	c.Industry = strings.TrimSpace(in.Industry)
	c.AdminContactPerson = strings.TrimSpace(in.AdminContactPerson)
	c.BillingContactPerson = strings.TrimSpace(in.BillingContactPerson)
	c.FiscalYearEnd = in.FiscalYearEnd

	if team := strings.TrimSpace(in.AssignedTeamID); team != "" {
		c.AssignedTeamID = &team
	}

	if !creating || strings.TrimSpace(in.Status) != "" {
		st, err := ParseStatus(in.Status)
		if err != nil {
			return err
		}
		c.Status = st
	}

	var err error
	if c.ICENumber, err = normalizeIdentifier(IdentifierICE, in.ICENumber, s.opts.StrictIdentifiers); err != nil {
		return err
	}
	if c.RCNumber, err = normalizeIdentifier(IdentifierRC, in.RCNumber, s.opts.StrictIdentifiers); err != nil {
		return err
	}
	if c.VATNumber, err = normalizeIdentifier(IdentifierVAT, in.VATNumber, s.opts.StrictIdentifiers); err != nil {
		return err
	}
	if c.CNSSNumber, err = normalizeIdentifier(IdentifierCNSS, in.CNSSNumber, s.opts.StrictIdentifiers); err != nil {
		return err
	}

	if strings.TrimSpace(in.ContactEmail) != "" {
		if c.ContactEmail, err = NormalizeEmail(in.ContactEmail); err != nil {
			return err
		}
	}
	if strings.TrimSpace(in.ContactPhone) != "" {
		if c.ContactPhone, err = NormalizePhone(in.ContactPhone); err != nil {
			return err
		}
	}
	return nil
}

// checkIdentifiers rejects the first present identifier already held by
// another live client of the tenant. Absent identifiers are skipped.
func (s *Service) checkIdentifiers(ctx context.Context, c *Client, excludeID string) error {
	for _, field := range Identifiers {
		value := c.IdentifierValue(field)
		if value == "" {
			continue
		}
		exists, err := s.repo.IdentifierExists(ctx, c.TenantID, field, value, excludeID)
		if err != nil {
			return fmt.Errorf("failed to check %s uniqueness: %w", field, err)
		}
		if exists {
			slog.WarnContext(ctx, "duplicate client identifier",
				logger.TenantID(c.TenantID),
				logger.String("field", string(field)),
			)
			return domain.NewDuplicate(string(field), value)
		}
	}
	return nil
}
