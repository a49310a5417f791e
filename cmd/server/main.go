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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/opentrusty/clientmanagement/internal/association"
	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/clientgroup"
	"github.com/opentrusty/clientmanagement/internal/config"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/identity"
	natsbus "github.com/opentrusty/clientmanagement/internal/messaging/nats"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
	"github.com/opentrusty/clientmanagement/internal/observability/metrics"
	"github.com/opentrusty/clientmanagement/internal/observability/tracing"
	"github.com/opentrusty/clientmanagement/internal/store/memory"
	"github.com/opentrusty/clientmanagement/internal/store/postgres"
	"github.com/opentrusty/clientmanagement/internal/tenant"
	transportHTTP "github.com/opentrusty/clientmanagement/internal/transport/http"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Environment,
	})
	slog.Info("starting client management service", logger.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("service stopped with error", logger.Error(err))
		os.Exit(1)
	}
	slog.Info("service stopped")
}

// repositories is the storage a running service needs.
type repositories struct {
	clients      client.Repository
	groups       clientgroup.Repository
	associations association.Repository
	opener       tenant.Opener
	close        func()
}

func run(ctx context.Context, cfg *config.Config) error {
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Environment,
		SamplingRate:   cfg.Observability.SampleRatio,
		Endpoint:       cfg.Observability.OTELEndpoint,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
		tracer = tracing.Noop()
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	meter, err := metrics.New(ctx, metrics.Config{Enabled: cfg.Observability.OTELEnabled}, cfg.Observability.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	instruments, err := metrics.NewInstruments(meter)
	if err != nil {
		return fmt.Errorf("failed to register instruments: %w", err)
	}

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	var (
		publisher event.Publisher = event.LogPublisher{}
		bus       *natsbus.Bus
	)
	if cfg.NATS.URL != "" {
		bus, err = natsbus.Connect(ctx, natsbus.Config{
			URL:        cfg.NATS.URL,
			Stream:     cfg.NATS.Stream,
			Durable:    cfg.NATS.Durable,
			MaxDeliver: cfg.NATS.MaxDeliver,
			AckWait:    cfg.NATS.AckWait,
		}, instruments)
		if err != nil {
			return err
		}
		defer func() { _ = bus.Close() }()
		publisher = bus
	} else {
		slog.Warn("no NATS_URL configured, events are only logged and the initialize consumer is disabled")
	}

	users, closeUsers, err := userDirectory(cfg)
	if err != nil {
		return err
	}
	defer closeUsers()

	auditLogger := audit.NewSlogLogger()
	clientService := client.NewService(repos.clients, publisher, auditLogger, client.Options{
		StrictIdentifiers: cfg.Clients.StrictIdentifiers,
	})
	groupService := clientgroup.NewService(repos.groups, repos.clients, publisher, auditLogger)
	associationService := association.NewService(repos.associations, repos.clients, users, publisher, auditLogger)
	initializer := tenant.NewInitializer(repos.opener, publisher, auditLogger, tracer)

	h := transportHTTP.NewHandler(clientService, groupService, associationService, instruments, transportHTTP.Config{
		Development:   cfg.IsDevelopment(),
		DefaultTenant: cfg.Tenancy.DefaultTenant,
		DefaultUser:   cfg.Tenancy.DefaultUser,
		JWTSecret:     cfg.Auth.JWTSecret,
	})
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      transportHTTP.NewRouter(h, rateLimiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting http server", logger.Component("server"), logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if bus != nil {
		g.Go(func() error {
			stopConsumer, err := bus.SubscribeInitialize(gctx, initializer)
			if err != nil {
				return err
			}
			<-gctx.Done()
			stopConsumer()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		slog.Warn("using the in-memory store, data is lost on restart")
		cluster := memory.NewCluster()
		store := cluster.Database(cfg.Database.Database)
		return &repositories{
			clients:      store.Clients(),
			groups:       store.Groups(),
			associations: store.Associations(),
			opener:       cluster,
			close:        func() {},
		}, nil

	default:
		dbCfg := postgresConfig(cfg.Database)
		db, err := postgres.New(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("connected to database", logger.Database(dbCfg.Database))

		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return &repositories{
			clients:      postgres.NewClientRepository(db),
			groups:       postgres.NewGroupRepository(db),
			associations: postgres.NewAssociationRepository(db),
			opener:       postgres.NewProvisioner(dbCfg),
			close:        db.Close,
		}, nil
	}
}

func userDirectory(cfg *config.Config) (association.UserDirectory, func(), error) {
	if cfg.Identity.ServiceURL == "" {
		slog.Warn("no identity service configured, every user id is accepted")
		return identity.AllowAll{}, func() {}, nil
	}
	checker, err := identity.NewHTTPChecker(identity.CheckerConfig{
		BaseURL:      cfg.Identity.ServiceURL,
		Timeout:      cfg.Identity.Timeout,
		CacheTTL:     cfg.Identity.CacheTTL,
		CacheMaxCost: cfg.Identity.CacheMaxCost,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create identity checker: %w", err)
	}
	return checker, checker.Close, nil
}

func postgresConfig(d config.DatabaseConfig) postgres.Config {
	return postgres.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}
