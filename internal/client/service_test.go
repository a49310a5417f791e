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
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, c *Client) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = "c-new"
	}
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, tenantID, id string) (*Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Client), args.Error(1)
}

func (m *mockRepo) GetByIDIncludingDeleted(ctx context.Context, tenantID, id string) (*Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Client), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, c *Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, tenantID, id, actor string) (bool, error) {
	args := m.Called(ctx, tenantID, id, actor)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, tenantID string, req domain.PageRequest) ([]*Client, int, error) {
	args := m.Called(ctx, tenantID, req)
	return args.Get(0).([]*Client), args.Int(1), args.Error(2)
}

func (m *mockRepo) IdentifierExists(ctx context.Context, tenantID string, field Identifier, value, excludeID string) (bool, error) {
	args := m.Called(ctx, tenantID, field, value, excludeID)
	return args.Bool(0), args.Error(1)
}

// TestPurpose: Validates that blank identifiers do not take part in uniqueness checks.
// Scope: Unit Test
// Expected: Only the ICE uniqueness check runs; the created event carries the actor and the normalized snapshot.
// Test Case ID: CLI-10
func TestService_Create_SkipsBlankIdentifiers(t *testing.T) {
	repo := new(mockRepo)
	rec := &event.Recorder{}
	svc := NewService(repo, rec, audit.Nop{}, Options{})
	ctx := context.Background()

	repo.On("IdentifierExists", ctx, "t1", IdentifierICE, "111111111111111", "").Return(false, nil).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(c *Client) bool {
		return c.TenantID == "t1" && c.CompanyName == "Acme" && c.Status == StatusActive && c.RCNumber == nil
	})).Return(nil)

	c, err := svc.Create(ctx, "t1", "alice", Input{CompanyName: " Acme ", ICENumber: "111111111111111", RCNumber: "  "})
	require.NoError(t, err)
	assert.Equal(t, "c-new", c.ID)

	events := rec.BySubject(event.SubjectClientCreated)
	require.Len(t, events, 1)
	created := events[0].(event.ClientCreated)
	assert.Equal(t, "alice", created.CreatedBy)
	assert.Equal(t, "t1", created.TenantID)
	assert.Equal(t, event.Source, created.Source)
	assert.Equal(t, "Active", created.Status)

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "IdentifierExists", 1)
}

// TestPurpose: Validates that a duplicate identifier blocks creation without side effects.
// Scope: Unit Test
// Expected: DuplicateError naming the field and value; no insert and no event.
// Test Case ID: CLI-11
func TestService_Create_Duplicate(t *testing.T) {
	repo := new(mockRepo)
	rec := &event.Recorder{}
	svc := NewService(repo, rec, audit.Nop{}, Options{})
	ctx := context.Background()

	repo.On("IdentifierExists", ctx, "t1", IdentifierICE, "111111111111111", "").Return(false, nil)
	repo.On("IdentifierExists", ctx, "t1", IdentifierRC, "RC99", "").Return(true, nil)

	_, err := svc.Create(ctx, "t1", "", Input{CompanyName: "Acme", ICENumber: "111111111111111", RCNumber: "rc99"})

	var dup *domain.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "rc_number", dup.Field)
	assert.Equal(t, "RC99", dup.Value)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, rec.Events())
}

// TestPurpose: Validates that updates exclude the client itself from uniqueness checks.
// Scope: Unit Test
// Expected: IdentifierExists is called with the client id as exclusion.
// Test Case ID: CLI-12
func TestService_Update_ExcludesSelf(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, &event.Recorder{}, audit.Nop{}, Options{})
	ctx := context.Background()

	repo.On("IdentifierExists", ctx, "t1", IdentifierICE, "111111111111111", "c1").Return(false, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*client.Client")).Return(nil)

	c, err := svc.Update(ctx, "t1", "c1", "bob", Input{CompanyName: "Acme Corp", ICENumber: "111111111111111", Status: "Inactive"})
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, c.Status)
	repo.AssertExpectations(t)
}

// TestPurpose: Validates that updating a missing client publishes nothing.
// Scope: Unit Test
// Expected: ErrNotFound is returned and the recorder stays empty.
// Test Case ID: CLI-13
func TestService_Update_NotFound(t *testing.T) {
	repo := new(mockRepo)
	rec := &event.Recorder{}
	svc := NewService(repo, rec, audit.Nop{}, Options{})
	ctx := context.Background()

	repo.On("Update", ctx, mock.Anything).Return(fmt.Errorf("client c1: %w", domain.ErrNotFound))

	_, err := svc.Update(ctx, "t1", "c1", "bob", Input{CompanyName: "Acme", Status: "Active"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, rec.Events())
}

// TestPurpose: Validates that an unknown or missing status is rejected on update instead of defaulting to Active.
// Scope: Unit Test
// Expected: ValidationError on status for "Archived" and for a blank status; repository is never touched.
// Test Case ID: CLI-14
func TestService_Update_UnknownStatus(t *testing.T) {
	for _, status := range []string{"Archived", "", "  "} {
		repo := new(mockRepo)
		svc := NewService(repo, &event.Recorder{}, audit.Nop{}, Options{})

		_, err := svc.Update(context.Background(), "t1", "c1", "bob", Input{CompanyName: "Acme", Status: status})

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr), "status %q", status)
		assert.Equal(t, "status", verr.Field)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	}
}

// TestPurpose: Validates delete bookkeeping and actor fallback.
// Scope: Unit Test
// Security: Audit trail never records a blank actor
// Expected: A blank actor is stored as System; a missing row returns false without an event.
// Test Case ID: CLI-15
func TestService_Delete(t *testing.T) {
	repo := new(mockRepo)
	rec := &event.Recorder{}
	svc := NewService(repo, rec, audit.Nop{}, Options{})
	ctx := context.Background()

	repo.On("Delete", ctx, "t1", "c1", domain.SystemActor).Return(true, nil)
	repo.On("Delete", ctx, "t1", "missing", "alice").Return(false, nil)

	ok, err := svc.Delete(ctx, "t1", "c1", "  ")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Delete(ctx, "t1", "missing", "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	deleted := rec.BySubject(event.SubjectClientDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, domain.SystemActor, deleted[0].(event.ClientDeleted).DeletedBy)
}

// TestPurpose: Validates that infrastructure failures propagate unchanged in kind.
// Scope: Unit Test
// Expected: The store error is wrapped, not converted to not-found or duplicate.
// Test Case ID: CLI-16
func TestService_Create_StoreFailure(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, &event.Recorder{}, audit.Nop{}, Options{})
	ctx := context.Background()
	boom := errors.New("connection refused")

	repo.On("IdentifierExists", ctx, "t1", IdentifierICE, "111111111111111", "").Return(false, boom)

	_, err := svc.Create(ctx, "t1", "alice", Input{CompanyName: "Acme", ICENumber: "111111111111111"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsDuplicate(err))
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

// TestPurpose: Validates strict identifier mode.
// Scope: Unit Test
// Expected: A malformed ICE is rejected before any repository call.
// Test Case ID: CLI-17
func TestService_Create_StrictIdentifiers(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, &event.Recorder{}, audit.Nop{}, Options{StrictIdentifiers: true})

	_, err := svc.Create(context.Background(), "t1", "alice", Input{CompanyName: "Acme", ICENumber: "ICE000000000000"})
	assert.True(t, domain.IsValidation(err))
	repo.AssertExpectations(t)
}
