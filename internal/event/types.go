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

package event

import "time"

// ClientSnapshot is the full field set of a client at event time.
type ClientSnapshot struct {
	ClientID             string     `json:"clientId"`
	CompanyName          string     `json:"companyName"`
	Country              string     `json:"country"`
	Address              string     `json:"address"`
	Industry             string     `json:"industry"`
	ICENumber            *string    `json:"iceNumber,omitempty"`
	RCNumber             *string    `json:"rcNumber,omitempty"`
	VATNumber            *string    `json:"vatNumber,omitempty"`
	CNSSNumber           *string    `json:"cnssNumber,omitempty"`
	AdminContactPerson   string     `json:"adminContactPerson"`
	BillingContactPerson string     `json:"billingContactPerson"`
	ContactEmail         string     `json:"contactEmail,omitempty"`
	ContactPhone         string     `json:"contactPhone,omitempty"`
	Status               string     `json:"status"`
	FiscalYearEnd        *time.Time `json:"fiscalYearEnd,omitempty"`
	AssignedTeamID       *string    `json:"assignedTeamId,omitempty"`
}

type ClientCreated struct {
	Metadata
	ClientSnapshot
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

func (ClientCreated) Subject() string { return SubjectClientCreated }

type ClientUpdated struct {
	Metadata
	ClientSnapshot
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

func (ClientUpdated) Subject() string { return SubjectClientUpdated }

type ClientDeleted struct {
	Metadata
	ClientID  string    `json:"clientId"`
	DeletedAt time.Time `json:"deletedAt"`
	DeletedBy string    `json:"deletedBy"`
}

func (ClientDeleted) Subject() string { return SubjectClientDeleted }

type GroupCreated struct {
	Metadata
	GroupID     string    `json:"groupId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

func (GroupCreated) Subject() string { return SubjectGroupCreated }

type GroupUpdated struct {
	Metadata
	GroupID     string    `json:"groupId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UpdatedBy   string    `json:"updatedBy"`
}

func (GroupUpdated) Subject() string { return SubjectGroupUpdated }

type GroupDeleted struct {
	Metadata
	GroupID   string    `json:"groupId"`
	DeletedAt time.Time `json:"deletedAt"`
	DeletedBy string    `json:"deletedBy"`
}

func (GroupDeleted) Subject() string { return SubjectGroupDeleted }

type ClientAddedToGroup struct {
	Metadata
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
	GroupID    string    `json:"groupId"`
	GroupName  string    `json:"groupName"`
	AddedAt    time.Time `json:"addedAt"`
	AddedBy    string    `json:"addedBy"`
}

func (ClientAddedToGroup) Subject() string { return SubjectClientAddedToGroup }

type ClientRemovedFromGroup struct {
	Metadata
	ClientID  string    `json:"clientId"`
	GroupID   string    `json:"groupId"`
	RemovedAt time.Time `json:"removedAt"`
	RemovedBy string    `json:"removedBy"`
}

func (ClientRemovedFromGroup) Subject() string { return SubjectClientRemovedFromGroup }

type UserAssignedToClient struct {
	Metadata
	AssociationID string    `json:"associationId"`
	UserID        string    `json:"userId"`
	ClientID      string    `json:"clientId"`
	AssignedAt    time.Time `json:"assignedAt"`
	AssignedBy    string    `json:"assignedBy"`
	Role          string    `json:"role,omitempty"`
}

func (UserAssignedToClient) Subject() string { return SubjectUserAssignedToClient }

type UserRemovedFromClient struct {
	Metadata
	UserID    string    `json:"userId"`
	ClientID  string    `json:"clientId"`
	RemovedAt time.Time `json:"removedAt"`
	RemovedBy string    `json:"removedBy"`
}

func (UserRemovedFromClient) Subject() string { return SubjectUserRemovedFromClient }

// ClientManagementInitialized completes the tenant provisioning saga step.
type ClientManagementInitialized struct {
	Metadata
	SchemaCreated bool      `json:"schemaCreated"`
	InitializedAt time.Time `json:"initializedAt"`
}

func (ClientManagementInitialized) Subject() string { return SubjectInitialized }
