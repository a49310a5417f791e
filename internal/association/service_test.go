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

package association

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Get(ctx context.Context, tenantID, userID, clientID string) (*Association, error) {
	args := m.Called(ctx, tenantID, userID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Association), args.Error(1)
}

func (m *mockRepo) Add(ctx context.Context, a *Association) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = "assoc-new"
		a.AssignedAt = time.Now().UTC()
	}
	return args.Error(0)
}

func (m *mockRepo) Remove(ctx context.Context, tenantID, userID, clientID string) (bool, error) {
	args := m.Called(ctx, tenantID, userID, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) ListByClient(ctx context.Context, tenantID, clientID string, req domain.PageRequest) ([]*Association, error) {
	args := m.Called(ctx, tenantID, clientID, req)
	return args.Get(0).([]*Association), args.Error(1)
}

func (m *mockRepo) CountByClient(ctx context.Context, tenantID, clientID string) (int, error) {
	args := m.Called(ctx, tenantID, clientID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) ListByUser(ctx context.Context, tenantID, userID string, req domain.PageRequest) ([]*Association, error) {
	args := m.Called(ctx, tenantID, userID, req)
	return args.Get(0).([]*Association), args.Error(1)
}

func (m *mockRepo) CountByUser(ctx context.Context, tenantID, userID string) (int, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Int(0), args.Error(1)
}

type mockClients struct {
	mock.Mock
}

func (m *mockClients) GetByID(ctx context.Context, tenantID, id string) (*client.Client, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

type stubUsers struct {
	known bool
	err   error
	calls int
}

func (s *stubUsers) UserExists(context.Context, string, string) (bool, error) {
	s.calls++
	return s.known, s.err
}

var notFound = fmt.Errorf("association: %w", domain.ErrNotFound)

// TestPurpose: Validates a first-time assignment.
// Scope: Unit Test
// Expected: Association is created with the actor and one assigned event is published.
// Test Case ID: ASC-01
func TestService_Assign_Creates(t *testing.T) {
	repo, clients, users, rec := new(mockRepo), new(mockClients), &stubUsers{known: true}, &event.Recorder{}
	svc := NewService(repo, clients, users, rec, audit.Nop{})
	ctx := context.Background()

	clients.On("GetByID", ctx, "t1", "c1").Return(&client.Client{ID: "c1", TenantID: "t1"}, nil)
	repo.On("Get", ctx, "t1", "u1", "c1").Return(nil, notFound)
	repo.On("Add", ctx, mock.MatchedBy(func(a *Association) bool {
		return a.UserID == "u1" && a.ClientID == "c1" && a.TenantID == "t1" && a.AssignedBy == "admin"
	})).Return(nil)

	a, err := svc.Assign(ctx, "t1", "u1", "c1", "admin")
	require.NoError(t, err)
	assert.Equal(t, "assoc-new", a.ID)
	assert.Equal(t, 1, users.calls)

	assigned := rec.BySubject(event.SubjectUserAssignedToClient)
	require.Len(t, assigned, 1)
	assert.Equal(t, "assoc-new", assigned[0].(event.UserAssignedToClient).AssociationID)
	repo.AssertExpectations(t)
}

// TestPurpose: Validates that re-assignment returns the existing association.
// Scope: Unit Test
// Expected: Same id returned, no insert, no identity lookup, no event.
// Test Case ID: ASC-02
func TestService_Assign_ReturnsExisting(t *testing.T) {
	repo, clients, users, rec := new(mockRepo), new(mockClients), &stubUsers{known: true}, &event.Recorder{}
	svc := NewService(repo, clients, users, rec, audit.Nop{})
	ctx := context.Background()
	existing := &Association{ID: "assoc-1", UserID: "u1", ClientID: "c1", TenantID: "t1"}

	clients.On("GetByID", ctx, "t1", "c1").Return(&client.Client{ID: "c1"}, nil)
	repo.On("Get", ctx, "t1", "u1", "c1").Return(existing, nil)

	a, err := svc.Assign(ctx, "t1", "u1", "c1", "admin")
	require.NoError(t, err)
	assert.Equal(t, "assoc-1", a.ID)
	assert.Equal(t, 0, users.calls)
	assert.Empty(t, rec.Events())
	repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

// TestPurpose: Validates the race where a concurrent assign wins the unique index.
// Scope: Unit Test
// Expected: The duplicate insert is resolved by re-reading the winner's row.
// Test Case ID: ASC-03
func TestService_Assign_LostRace(t *testing.T) {
	repo, clients, rec := new(mockRepo), new(mockClients), &event.Recorder{}
	svc := NewService(repo, clients, &stubUsers{known: true}, rec, audit.Nop{})
	ctx := context.Background()
	winner := &Association{ID: "assoc-winner", UserID: "u1", ClientID: "c1", TenantID: "t1"}

	clients.On("GetByID", ctx, "t1", "c1").Return(&client.Client{ID: "c1"}, nil)
	repo.On("Get", ctx, "t1", "u1", "c1").Return(nil, notFound).Once()
	repo.On("Add", ctx, mock.Anything).Return(domain.NewDuplicate("user_client", "u1/c1"))
	repo.On("Get", ctx, "t1", "u1", "c1").Return(winner, nil).Once()

	a, err := svc.Assign(ctx, "t1", "u1", "c1", "")
	require.NoError(t, err)
	assert.Equal(t, "assoc-winner", a.ID)
	assert.Empty(t, rec.Events())
}

// TestPurpose: Validates the guards in front of an assignment.
// Scope: Unit Test
// Expected: Missing client and unknown user are not-found; identity failures propagate.
// Test Case ID: ASC-04
func TestService_Assign_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("client missing", func(t *testing.T) {
		clients := new(mockClients)
		svc := NewService(new(mockRepo), clients, &stubUsers{known: true}, &event.Recorder{}, audit.Nop{})
		clients.On("GetByID", ctx, "t1", "c1").Return(nil, fmt.Errorf("client c1: %w", domain.ErrNotFound))

		_, err := svc.Assign(ctx, "t1", "u1", "c1", "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("user unknown", func(t *testing.T) {
		repo, clients := new(mockRepo), new(mockClients)
		svc := NewService(repo, clients, &stubUsers{known: false}, &event.Recorder{}, audit.Nop{})
		clients.On("GetByID", ctx, "t1", "c1").Return(&client.Client{ID: "c1"}, nil)
		repo.On("Get", ctx, "t1", "ghost", "c1").Return(nil, notFound)

		_, err := svc.Assign(ctx, "t1", "ghost", "c1", "")
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("identity down", func(t *testing.T) {
		repo, clients := new(mockRepo), new(mockClients)
		boom := errors.New("identity service timeout")
		svc := NewService(repo, clients, &stubUsers{err: boom}, &event.Recorder{}, audit.Nop{})
		clients.On("GetByID", ctx, "t1", "c1").Return(&client.Client{ID: "c1"}, nil)
		repo.On("Get", ctx, "t1", "u1", "c1").Return(nil, notFound)

		_, err := svc.Assign(ctx, "t1", "u1", "c1", "")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank user", func(t *testing.T) {
		svc := NewService(new(mockRepo), new(mockClients), &stubUsers{}, &event.Recorder{}, audit.Nop{})
		_, err := svc.Assign(ctx, "t1", " ", "c1", "")
		assert.True(t, domain.IsValidation(err))
	})
}

// TestPurpose: Validates that removal publishes only on success.
// Scope: Unit Test
// Expected: One removed event for the existing pair, none for the missing pair.
// Test Case ID: ASC-05
func TestService_Remove(t *testing.T) {
	repo, rec := new(mockRepo), &event.Recorder{}
	svc := NewService(repo, new(mockClients), &stubUsers{}, rec, audit.Nop{})
	ctx := context.Background()

	repo.On("Remove", ctx, "t1", "u1", "c1").Return(true, nil)
	repo.On("Remove", ctx, "t1", "u2", "c1").Return(false, nil)

	ok, err := svc.Remove(ctx, "t1", "u1", "c1", "admin")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Remove(ctx, "t1", "u2", "c1", "admin")
	require.NoError(t, err)
	assert.False(t, ok)

	removed := rec.BySubject(event.SubjectUserRemovedFromClient)
	require.Len(t, removed, 1)
	assert.Equal(t, "admin", removed[0].(event.UserRemovedFromClient).RemovedBy)
}

// TestPurpose: Validates that listings pair a page with a separate total count.
// Scope: Unit Test
// Expected: Normalized request reaches the repository and the count is reported as total.
// Test Case ID: ASC-06
func TestService_ClientUsers(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, new(mockClients), &stubUsers{}, &event.Recorder{}, audit.Nop{})
	ctx := context.Background()
	normalized := domain.PageRequest{Page: 1, PageSize: 100}

	repo.On("ListByClient", ctx, "t1", "c1", normalized).Return([]*Association{{ID: "a1"}}, nil)
	repo.On("CountByClient", ctx, "t1", "c1").Return(250, nil)

	page, err := svc.ClientUsers(ctx, "t1", "c1", domain.PageRequest{Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 250, page.TotalCount)
	assert.Equal(t, 100, page.PageSize)
	assert.Len(t, page.Items, 1)
	repo.AssertExpectations(t)
}

// TestPurpose: Validates that user ids are opaque identity-provider strings.
// Scope: Unit Test
// Expected: Provider-shaped ids are trimmed and accepted; blank and oversized ids are validation errors on every entry point.
// Test Case ID: ASC-07
func TestNormalizeUserID(t *testing.T) {
	for _, in := range []string{"auth0|user-42", "google-oauth2|1090", "0192a4d2-7c1e-7b3a-9f00-000000000001", "alice@example.com"} {
		got, err := NormalizeUserID("  " + in + " ")
		require.NoError(t, err, in)
		assert.Equal(t, in, got)
	}

	_, err := NormalizeUserID(strings.Repeat("x", MaxUserIDLength))
	assert.NoError(t, err)
	_, err = NormalizeUserID(strings.Repeat("x", MaxUserIDLength+1))
	assert.True(t, domain.IsValidation(err))
	_, err = NormalizeUserID("\t")
	assert.True(t, domain.IsValidation(err))

	svc := NewService(new(mockRepo), new(mockClients), &stubUsers{}, &event.Recorder{}, audit.Nop{})
	ctx := context.Background()
	_, err = svc.Remove(ctx, "t1", " ", "c1", "")
	assert.True(t, domain.IsValidation(err))
	_, err = svc.UserClients(ctx, "t1", "", domain.PageRequest{})
	assert.True(t, domain.IsValidation(err))
}
