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

package association_test

import (
	"context"
	"testing"

	"github.com/opentrusty/clientmanagement/internal/association"
	"github.com/opentrusty/clientmanagement/internal/audit"
	"github.com/opentrusty/clientmanagement/internal/client"
	"github.com/opentrusty/clientmanagement/internal/domain"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/identity"
	"github.com/opentrusty/clientmanagement/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates idempotent assignment end to end.
// Scope: Integration Test (in-memory store)
// Expected: Two assigns return the same id, one row exists, listings agree from both sides.
// Test Case ID: ASC-10
func TestAssignTwiceKeepsOneRow(t *testing.T) {
	store := memory.New()
	rec := &event.Recorder{}
	clients := client.NewService(store.Clients(), rec, audit.Nop{}, client.Options{})
	svc := association.NewService(store.Associations(), store.Clients(), identity.AllowAll{}, rec, audit.Nop{})
	ctx := context.Background()

	c, err := clients.Create(ctx, "t1", "", client.Input{CompanyName: "Acme"})
	require.NoError(t, err)

	first, err := svc.Assign(ctx, "t1", "user-1", c.ID, "admin")
	require.NoError(t, err)
	second, err := svc.Assign(ctx, "t1", "user-1", c.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	users, err := svc.ClientUsers(ctx, "t1", c.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, users.TotalCount)

	linked, err := svc.UserClients(ctx, "t1", "user-1", domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, linked.Items, 1)
	assert.Equal(t, c.ID, linked.Items[0].ClientID)

	other, err := svc.UserClients(ctx, "t2", "user-1", domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, other.TotalCount)

	assert.Len(t, rec.BySubject(event.SubjectUserAssignedToClient), 1)

	ok, err := svc.Remove(ctx, "t1", "user-1", c.ID, "admin")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Remove(ctx, "t1", "user-1", c.ID, "admin")
	require.NoError(t, err)
	assert.False(t, ok)
}
