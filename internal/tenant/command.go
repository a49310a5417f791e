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

// Package tenant provisions client management for a newly onboarded tenant.
package tenant

import (
	"context"
	"errors"
	"strings"

	"github.com/opentrusty/clientmanagement/internal/clientgroup"
)

// InitializeCommand asks this service to prepare a tenant database.
type InitializeCommand struct {
	CorrelationID string `json:"correlationId"`
	TenantID      string `json:"tenantId"`
	TenantName    string `json:"tenantName"`
	DatabaseName  string `json:"databaseName"`
}

// ErrInvalidCommand marks a command that can never succeed on redelivery.
var ErrInvalidCommand = errors.New("invalid initialize command")

// Validate checks the fields the handler depends on.
func (c InitializeCommand) Validate() error {
	if strings.TrimSpace(c.TenantID) == "" {
		return errors.Join(ErrInvalidCommand, errors.New("tenantId is required"))
	}
	if strings.TrimSpace(c.DatabaseName) == "" {
		return errors.Join(ErrInvalidCommand, errors.New("databaseName is required"))
	}
	return nil
}

// SchemaState reports what EnsureSchema did.
type SchemaState int

const (
	SchemaUpToDate SchemaState = iota
	SchemaMigrated
	// SchemaUnmanaged means tables exist without migration bookkeeping and
	// were left untouched.
	SchemaUnmanaged
)

func (s SchemaState) String() string {
	switch s {
	case SchemaMigrated:
		return "migrated"
	case SchemaUnmanaged:
		return "unmanaged"
	default:
		return "up_to_date"
	}
}

// Store is a tenant database opened for provisioning.
type Store interface {
	EnsureSchema(ctx context.Context) (SchemaState, error)
	// CountGroups counts every group row of the tenant, deleted or not.
	CountGroups(ctx context.Context, tenantID string) (int, error)
	// SeedGroups inserts the seeds in one transaction, skipping names that
	// already exist.
	SeedGroups(ctx context.Context, tenantID, actor string, seeds []clientgroup.Seed) error
	Close()
}

// Opener connects to a tenant database by name using the shared
// connection parameters.
type Opener interface {
	Open(ctx context.Context, databaseName string) (Store, error)
}
