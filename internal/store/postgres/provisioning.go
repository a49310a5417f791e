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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/id"
	"github.com/opentrusty/clientmanagement/internal/tenant"
)

// duplicateDatabase is raised by CREATE DATABASE when a concurrent
// provisioning won.
const duplicateDatabase = "42P04"

// Provisioner opens tenant databases on the server described by base.
type Provisioner struct {
	base Config
}

// NewProvisioner creates a provisioner sharing base's host and credentials.
func NewProvisioner(base Config) *Provisioner {
	return &Provisioner{base: base}
}

// Open implements tenant.Opener. A missing database is created first.
func (p *Provisioner) Open(ctx context.Context, databaseName string) (tenant.Store, error) {
	if err := p.createDatabase(ctx, databaseName); err != nil {
		return nil, err
	}
	cfg := p.base.WithDatabase(databaseName)
	cfg.MaxOpenConns = 2
	cfg.MaxIdleConns = 0
	db, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &TenantStore{db: db}, nil
}

func (p *Provisioner) createDatabase(ctx context.Context, name string) error {
	conn, err := pgx.Connect(ctx, p.base.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, name,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up database %s: %w", name, err)
	}
	if exists {
		return nil
	}

	_, err = conn.Exec(ctx, `CREATE DATABASE `+pgx.Identifier{name}.Sanitize())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == duplicateDatabase {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// TenantStore is an opened tenant database. It implements tenant.Store.
type TenantStore struct {
	db *DB
}

// NewTenantStore wraps an already opened database.
func NewTenantStore(db *DB) *TenantStore {
	return &TenantStore{db: db}
}

// EnsureSchema applies pending migrations unless the tables predate goose
// bookkeeping, in which case the schema is left alone.
func (s *TenantStore) EnsureSchema(ctx context.Context) (tenant.SchemaState, error) {
	var hasClients, hasVersions bool
	err := s.db.pool.QueryRow(ctx, `
		SELECT to_regclass('public.clients') IS NOT NULL,
		       to_regclass('public.goose_db_version') IS NOT NULL
	`).Scan(&hasClients, &hasVersions)
	if err != nil {
		return tenant.SchemaUpToDate, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if hasClients && !hasVersions {
		return tenant.SchemaUnmanaged, nil
	}

	before, err := s.currentVersion(ctx, hasVersions)
	if err != nil {
		return tenant.SchemaUpToDate, err
	}
	if err := s.db.Migrate(ctx); err != nil {
		return tenant.SchemaUpToDate, err
	}
	after, err := s.db.Version(ctx)
	if err != nil {
		return tenant.SchemaUpToDate, err
	}
	if after != before {
		return tenant.SchemaMigrated, nil
	}
	return tenant.SchemaUpToDate, nil
}

func (s *TenantStore) currentVersion(ctx context.Context, tracked bool) (int64, error) {
	if !tracked {
		return 0, nil
	}
	return s.db.Version(ctx)
}

// CountGroups counts every group of the tenant, soft-deleted ones included.
func (s *TenantStore) CountGroups(ctx context.Context, tenantID string) (int, error) {
	var n int
	if err := s.db.pool.QueryRow(ctx,
		`SELECT count(*) FROM client_groups WHERE tenant_id = $1`, tenantID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return n, nil
}

// SeedGroups inserts the seeds in one transaction, skipping live names.
func (s *TenantStore) SeedGroups(ctx context.Context, tenantID, actor string, seeds []clientgroup.Seed) error {
	return pgx.BeginFunc(ctx, s.db.pool, func(tx pgx.Tx) error {
		for _, seed := range seeds {
			_, err := tx.Exec(ctx, `
				INSERT INTO client_groups (id, tenant_id, name, description, created_by)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (tenant_id, name) WHERE deleted_at IS NULL DO NOTHING
			`, id.NewUUIDv7(), tenantID, seed.Name, seed.Description, actor)
			if err != nil {
				return fmt.Errorf("failed to seed group %s: %w", seed.Name, err)
			}
		}
		return nil
	})
}

// Close releases the tenant connection pool.
func (s *TenantStore) Close() {
	s.db.Close()
}
