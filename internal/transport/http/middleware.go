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

package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Metadata headers forwarded by the gateway.
const (
	HeaderTenantID  = "X-Tenant-Id"
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
)

// Claims are the bearer token fields used for tenant and actor resolution.
type Claims struct {
	UserID            string `json:"user_id,omitempty"`
	Email             string `json:"email,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Name              string `json:"name,omitempty"`
	TenantID          string `json:"tenant_id,omitempty"`
	TenantIDAlt       string `json:"tenantId,omitempty"`
	jwt.RegisteredClaims
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// IdentityMiddleware records the metadata headers and, when a secret is
// configured, the claims of an HMAC-signed bearer token. Requests without a
// token pass through; a token that fails verification is rejected.
func IdentityMiddleware(secret []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := Caller{
				HeaderTenantID:  strings.TrimSpace(r.Header.Get(HeaderTenantID)),
				HeaderUserID:    strings.TrimSpace(r.Header.Get(HeaderUserID)),
				HeaderUserEmail: strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
			}

			if raw := bearerToken(r); raw != "" && len(secret) > 0 {
				claims, err := parseClaims(raw, secret)
				if err != nil {
					slog.WarnContext(r.Context(), "rejected bearer token", logger.Error(err))
					respondStatus(w, status.New(codes.Unauthenticated, "invalid bearer token"))
					return
				}
				caller.ClaimTenantID = firstNonBlank(claims.TenantID, claims.TenantIDAlt)
				caller.ClaimSubject = firstNonBlank(claims.Subject, claims.UserID)
				caller.ClaimEmail = firstNonBlank(claims.Email, claims.PreferredUsername)
				caller.ClaimName = claims.Name
			}

			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
		})
	}
}

func parseClaims(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
