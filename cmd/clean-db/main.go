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

// Command clean-db empties the client management tables of a development
// database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/opentrusty/clientmanagement/internal/config"
	"github.com/opentrusty/clientmanagement/internal/store/postgres"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "clean-db: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("clean-db", flag.ContinueOnError)
	database := fs.String("database", "", "database name (defaults to the configured database)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.IsDevelopment() {
		return fmt.Errorf("refusing to run with APP_ENV=%s; clean-db only runs in development", cfg.Environment)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("database driver %q keeps nothing to clean", cfg.Database.Driver)
	}

	dbCfg := postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	}
	if *database != "" {
		dbCfg = dbCfg.WithDatabase(*database)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.Truncate(ctx, db); err != nil {
		return err
	}
	fmt.Printf("✓ Cleaned client management tables in %s\n", dbCfg.Database)
	return nil
}
