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

package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates that generated identifiers are UUIDv7 for temporal ordering.
// Scope: Unit Test
// Expected: Parsed version is 7 and two calls never collide.
// Test Case ID: ID-01
func TestNewUUIDv7(t *testing.T) {
	a, b := NewUUIDv7(), NewUUIDv7()
	assert.NotEqual(t, a, b)

	u, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
}

// TestPurpose: Validates identifier parsing and canonicalization.
// Scope: Unit Test
// Expected: Upper-case input is lower-cased, garbage is rejected.
// Test Case ID: ID-02
func TestParse(t *testing.T) {
	got, err := Parse("0190F5C2-7B7A-7C1D-9B3E-1A2B3C4D5E6F")
	require.NoError(t, err)
	assert.Equal(t, "0190f5c2-7b7a-7c1d-9b3e-1a2b3c4d5e6f", got)

	_, err = Parse("not-a-uuid")
	assert.Error(t, err)
}
