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

package logger

import "log/slog"

// Common attribute keys for consistent logging across the application

// Request attributes
func RequestID(id string) slog.Attr {
	return slog.String("request_id", id)
}

func Method(method string) slog.Attr {
	return slog.String("method", method)
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}

func RemoteAddr(addr string) slog.Attr {
	return slog.String("remote_addr", addr)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

func Duration(ms int64) slog.Attr {
	return slog.Int64("duration_ms", ms)
}

// Tenancy and actor attributes
func TenantID(id string) slog.Attr {
	return slog.String("tenant_id", id)
}

func Actor(actor string) slog.Attr {
	return slog.String("actor", actor)
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// Entity attributes
func ClientID(id string) slog.Attr {
	return slog.String("client_id", id)
}

func GroupID(id string) slog.Attr {
	return slog.String("group_id", id)
}

func AssociationID(id string) slog.Attr {
	return slog.String("association_id", id)
}

// Messaging attributes
func Subject(subject string) slog.Attr {
	return slog.String("subject", subject)
}

func CorrelationID(id string) slog.Attr {
	return slog.String("correlation_id", id)
}

func Database(name string) slog.Attr {
	return slog.String("database", name)
}

// Error attributes
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func Code(code string) slog.Attr {
	return slog.String("code", code)
}

// Component attributes
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Operation(op string) slog.Attr {
	return slog.String("operation", op)
}

// String creates a generic string attribute
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}
