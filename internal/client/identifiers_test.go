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

package client

import (
	"testing"

	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates the format rules of Moroccan business identifiers.
// Scope: Unit Test
// Expected: Each validator accepts well-formed values and rejects malformed ones with a ValidationError.
// Test Case ID: CLI-01
func TestIdentifierValidators(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		value    string
		valid    bool
	}{
		{"ice ok", ValidateICE, "001525486000088", true},
		{"ice short", ValidateICE, "00152548600008", false},
		{"ice letters", ValidateICE, "ICE000000000000", false},
		{"rc ok", ValidateRC, "CASA12345", true},
		{"rc no digit", ValidateRC, "CASABLANCA", false},
		{"rc too short", ValidateRC, "A1", false},
		{"rc too long", ValidateRC, "RC123456789012345678901", false},
		{"vat ok", ValidateVAT, "12345678", true},
		{"vat mixed", ValidateVAT, "IF12345678", true},
		{"vat few digits", ValidateVAT, "IFABC1234", false},
		{"vat too long", ValidateVAT, "1234567890123456", false},
		{"cnss seven", ValidateCNSS, "1234567", false},
		{"cnss eight", ValidateCNSS, "12345678", true},
		{"cnss ten", ValidateCNSS, "1234567890", true},
		{"cnss letters", ValidateCNSS, "12345678A", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.value)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

// TestPurpose: Validates contact email normalization.
// Scope: Unit Test
// Expected: Addresses are lower-cased; display names and missing domains are rejected.
// Test Case ID: CLI-02
func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Billing@Acme.MA ")
	require.NoError(t, err)
	assert.Equal(t, "billing@acme.ma", got)

	for _, bad := range []string{"not-an-email", "Acme <billing@acme.ma>", "billing@localhost"} {
		_, err := NormalizeEmail(bad)
		assert.Error(t, err, bad)
	}
}

// TestPurpose: Validates phone number acceptance after stripping separators.
// Scope: Unit Test
// Expected: International formatting passes; too few digits or letters fail.
// Test Case ID: CLI-03
func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone(" +212 (5) 22-12-34-56 ")
	require.NoError(t, err)
	assert.Equal(t, "+212 (5) 22-12-34-56", got)

	_, err = NormalizePhone("12-34")
	assert.Error(t, err)
	_, err = NormalizePhone("0522ABCDEF")
	assert.Error(t, err)
}

// TestPurpose: Validates identifier normalization and the strict switch.
// Scope: Unit Test
// Expected: Blank becomes absent, RC is upper-cased, strict mode enforces formats.
// Test Case ID: CLI-04
func TestNormalizeIdentifier(t *testing.T) {
	v, err := normalizeIdentifier(IdentifierICE, "   ", true)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = normalizeIdentifier(IdentifierRC, " casa123 ", false)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "CASA123", *v)

	v, err = normalizeIdentifier(IdentifierICE, "ICE000000000000", false)
	require.NoError(t, err)
	assert.Equal(t, "ICE000000000000", *v)

	_, err = normalizeIdentifier(IdentifierICE, "ICE000000000000", true)
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{"active": StatusActive, "INACTIVE": StatusInactive, " Suspended ": StatusSuspended} {
		got, err := ParseStatus(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStatus("Archived")
	assert.True(t, domain.IsValidation(err))
	_, err = ParseStatus("")
	assert.Error(t, err)
}
