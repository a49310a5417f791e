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
	"net/mail"
	"strings"

	"github.com/opentrusty/clientmanagement/internal/domain"
)

// Identifier names a business registry number that is unique per tenant.
type Identifier string

const (
	IdentifierICE  Identifier = "ice_number"  // Identifiant Commun de l'Entreprise
	IdentifierRC   Identifier = "rc_number"   // Registre de Commerce
	IdentifierVAT  Identifier = "vat_number"  // Identifiant Fiscal
	IdentifierCNSS Identifier = "cnss_number" // social security affiliation
)

// Identifiers lists every unique business identifier in check order.
var Identifiers = []Identifier{IdentifierICE, IdentifierRC, IdentifierVAT, IdentifierCNSS}

// ValidateICE requires exactly 15 digits.
func ValidateICE(v string) error {
	if len(v) != 15 || countDigits(v) != 15 {
		return domain.NewValidation(string(IdentifierICE), "must be exactly 15 digits")
	}
	return nil
}

// ValidateRC requires 4 to 20 characters including at least one digit.
// Call on the upper-cased value.
func ValidateRC(v string) error {
	if len(v) < 4 || len(v) > 20 {
		return domain.NewValidation(string(IdentifierRC), "must be 4 to 20 characters")
	}
	if countDigits(v) == 0 {
		return domain.NewValidation(string(IdentifierRC), "must contain a digit")
	}
	return nil
}

// ValidateVAT requires 8 to 15 characters of which at least 8 are digits.
func ValidateVAT(v string) error {
	if len(v) < 8 || len(v) > 15 {
		return domain.NewValidation(string(IdentifierVAT), "must be 8 to 15 characters")
	}
	if countDigits(v) < 8 {
		return domain.NewValidation(string(IdentifierVAT), "must contain at least 8 digits")
	}
	return nil
}

// ValidateCNSS requires 8 to 10 digits.
func ValidateCNSS(v string) error {
	if len(v) < 8 || len(v) > 10 || countDigits(v) != len(v) {
		return domain.NewValidation(string(IdentifierCNSS), "must be 8 to 10 digits")
	}
	return nil
}

// NormalizeEmail validates a bare address and lower-cases it.
func NormalizeEmail(v string) (string, error) {
	v = strings.TrimSpace(v)
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return "", domain.NewValidation("contact_email", "must be a valid email address")
	}
	return strings.ToLower(addr.Address), nil
}

// NormalizePhone accepts 8 to 15 digits once spaces, dashes, parentheses
// and a leading plus are stripped. The trimmed input is kept as entered.
func NormalizePhone(v string) (string, error) {
	v = strings.TrimSpace(v)
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '+':
			return -1
		}
		return r
	}, v)
	if len(stripped) < 8 || len(stripped) > 15 || countDigits(stripped) != len(stripped) {
		return "", domain.NewValidation("contact_phone", "must contain 8 to 15 digits")
	}
	return v, nil
}

// normalizeIdentifier trims v, upper-cases RC numbers and maps blank to nil.
// With strict set the format rules for field are enforced.
func normalizeIdentifier(field Identifier, v string, strict bool) (*string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if field == IdentifierRC {
		v = strings.ToUpper(v)
	}
	if strict {
		var err error
		switch field {
		case IdentifierICE:
			err = ValidateICE(v)
		case IdentifierRC:
			err = ValidateRC(v)
		case IdentifierVAT:
			err = ValidateVAT(v)
		case IdentifierCNSS:
			err = ValidateCNSS(v)
		}
		if err != nil {
			return nil, err
		}
	}
	return &v, nil
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
