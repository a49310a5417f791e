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

// Command migrate applies or rolls back the client management schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/opentrusty/clientmanagement/internal/config"
	"github.com/opentrusty/clientmanagement/internal/store/postgres"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func printHelp(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage: migrate [options] <command>

Commands:
  up          Apply all pending migrations (default)
  down [n]    Roll back n migrations (default 1)
  version     Print the current schema version

Options:
`)
	fs.PrintDefaults()
}

func run(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	database := fs.String("database", "", "database name (defaults to the configured database)")
	fs.Usage = func() { printHelp(fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("database driver %q has no schema to migrate", cfg.Database.Driver)
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

	command := fs.Arg(0)
	switch command {
	case "", "up":
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	case "down":
		steps := 1
		if raw := fs.Arg(1); raw != "" {
			if steps, err = strconv.Atoi(raw); err != nil || steps < 1 {
				return fmt.Errorf("invalid step count %q", raw)
			}
		}
		if err := db.Rollback(ctx, steps); err != nil {
			return err
		}
	case "version":
	default:
		printHelp(fs)
		return fmt.Errorf("unknown command: %s", command)
	}

	version, err := db.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: schema version %d\n", dbCfg.Database, version)
	return nil
}
