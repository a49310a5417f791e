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

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-resty/resty/v2"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// CheckerConfig configures the HTTP identity checker.
type CheckerConfig struct {
	BaseURL string
	Timeout time.Duration
	// CacheTTL bounds how long a positive answer is reused.
	CacheTTL time.Duration
	// CacheMaxCost is the number of users kept in the cache.
	CacheMaxCost int64
}

// HTTPChecker asks the identity service whether a user exists in a tenant.
// Only positive answers are cached.
type HTTPChecker struct {
	client *resty.Client
	cache  *ristretto.Cache[string, bool]
	ttl    time.Duration
}

// NewHTTPChecker creates a checker for the identity service at cfg.BaseURL.
func NewHTTPChecker(cfg CheckerConfig) (*HTTPChecker, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.CacheMaxCost <= 0 {
		cfg.CacheMaxCost = 10_000
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, bool]{
		NumCounters: cfg.CacheMaxCost * 10,
		MaxCost:     cfg.CacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create identity cache: %w", err)
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Accept", "application/json")

	return &HTTPChecker{client: client, cache: cache, ttl: cfg.CacheTTL}, nil
}

// UserExists reports whether the identity service knows the user. Transport
// failures and unexpected statuses are returned as errors, never as false.
func (c *HTTPChecker) UserExists(ctx context.Context, tenantID, userID string) (bool, error) {
	key := tenantID + "/" + userID
	if ok, found := c.cache.Get(key); found && ok {
		return true, nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Tenant-Id", tenantID).
		SetPathParams(map[string]string{"tenant": tenantID, "user": userID}).
		Get("/api/v1/tenants/{tenant}/users/{user}")
	if err != nil {
		return false, fmt.Errorf("identity service request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		c.cache.SetWithTTL(key, true, 1, c.ttl)
		return true, nil
	case http.StatusNotFound:
		slog.InfoContext(ctx, "user unknown to identity service",
			logger.TenantID(tenantID), logger.UserID(userID))
		return false, nil
	default:
		return false, fmt.Errorf("identity service returned status %d", resp.StatusCode())
	}
}

// Close releases the cache.
func (c *HTTPChecker) Close() {
	c.cache.Close()
}
