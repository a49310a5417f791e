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

import "context"

type contextKey string

const callerKey contextKey = "caller"

// Caller is the ambient identity of a request, collected from metadata
// headers and an optional bearer token. Any field may be empty.
type Caller struct {
	HeaderTenantID  string
	HeaderUserID    string
	HeaderUserEmail string

	ClaimTenantID string
	ClaimSubject  string
	ClaimEmail    string
	ClaimName     string
}

func withCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// GetCaller retrieves the request identity from context.
func GetCaller(ctx context.Context) Caller {
	if val, ok := ctx.Value(callerKey).(Caller); ok {
		return val
	}
	return Caller{}
}
