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

// Package client manages a tenant's customer records.
package client

import (
	"strings"
	"time"

	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
)

// Status is the lifecycle state of a client. All transitions are allowed.
type Status string

const (
	StatusActive    Status = "Active"
	StatusInactive  Status = "Inactive"
	StatusSuspended Status = "Suspended"
)

// ParseStatus accepts the three known statuses, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	case "suspended":
		return StatusSuspended, nil
	}
	return "", domain.NewValidation("status", "must be one of Active, Inactive, Suspended")
}

// Client is a tenant's customer, identified by Moroccan business registry
// numbers.
type Client struct {
	ID                   string
	TenantID             string
	CompanyName          string
	Country              string
	Address              string
	Industry             string
	ICENumber            *string
	RCNumber             *string
	VATNumber            *string
	CNSSNumber           *string
	AdminContactPerson   string
	BillingContactPerson string
	ContactEmail         string
	ContactPhone         string
	Status               Status
	FiscalYearEnd        *time.Time
	AssignedTeamID       *string
	IsDeleted            bool
	DeletedAt            *time.Time
	DeletedBy            *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IdentifierValue returns the value stored for field, or "" when absent.
func (c *Client) IdentifierValue(field Identifier) string {
	var p *string
	switch field {
	case IdentifierICE:
		p = c.ICENumber
	case IdentifierRC:
		p = c.RCNumber
	case IdentifierVAT:
		p = c.VATNumber
	case IdentifierCNSS:
		p = c.CNSSNumber
	}
	if p == nil {
		return ""
	}
	return *p
}

// Snapshot copies the event-visible fields.
func (c *Client) Snapshot() event.ClientSnapshot {
	return event.ClientSnapshot{
		ClientID:             c.ID,
		CompanyName:          c.CompanyName,
		Country:              c.Country,
		Address:              c.Address,
		Industry:             c.Industry,
		ICENumber:            c.ICENumber,
		RCNumber:             c.RCNumber,
		VATNumber:            c.VATNumber,
		CNSSNumber:           c.CNSSNumber,
		AdminContactPerson:   c.AdminContactPerson,
		BillingContactPerson: c.BillingContactPerson,
		ContactEmail:         c.ContactEmail,
		ContactPhone:         c.ContactPhone,
		Status:               string(c.Status),
		FiscalYearEnd:        c.FiscalYearEnd,
		AssignedTeamID:       c.AssignedTeamID,
	}
}

// Input is the caller-supplied field set for create and full-replace update.
type Input struct {
	CompanyName          string
	Country              string
	Address              string
	Industry             string
	ICENumber            string
	RCNumber             string
	VATNumber            string
	CNSSNumber           string
	AdminContactPerson   string
	BillingContactPerson string
	ContactEmail         string
	ContactPhone         string
	Status               string
	FiscalYearEnd        *time.Time
	AssignedTeamID       string
}
