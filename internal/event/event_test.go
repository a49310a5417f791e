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

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates that metadata is flattened into the event body with camelCase keys.
// Scope: Unit Test
// Expected: correlationId, tenantId and source appear at the top level next to payload fields.
// Test Case ID: EVT-01
func TestEventEncoding_FlattensMetadata(t *testing.T) {
	ev := ClientDeleted{
		Metadata:  Correlated("t1", "corr-1"),
		ClientID:  "c1",
		DeletedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		DeletedBy: "alice",
	}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "corr-1", body["correlationId"])
	assert.Equal(t, "t1", body["tenantId"])
	assert.Equal(t, Source, body["source"])
	assert.Equal(t, "c1", body["clientId"])
	assert.Equal(t, "alice", body["deletedBy"])
	assert.Equal(t, SubjectClientDeleted, ev.Subject())
}

// TestPurpose: Validates that every event gets a fresh correlation id.
// Scope: Unit Test
// Expected: Two metadata stamps for the same tenant differ in correlation id.
// Test Case ID: EVT-02
func TestNewMetadata_FreshCorrelation(t *testing.T) {
	a, b := NewMetadata("t1"), NewMetadata("t1")
	assert.NotEmpty(t, a.CorrelationID)
	assert.NotEqual(t, a.CorrelationID, b.CorrelationID)
	assert.Equal(t, time.UTC, a.Timestamp.Location())
}

// TestPurpose: Validates the in-memory recorder used by service tests.
// Scope: Unit Test
// Expected: Events are filtered by subject and Err short-circuits recording.
// Test Case ID: EVT-03
func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, GroupDeleted{Metadata: NewMetadata("t1"), GroupID: "g1"}))
	require.NoError(t, r.Publish(ctx, ClientDeleted{Metadata: NewMetadata("t1"), ClientID: "c1"}))

	assert.Len(t, r.Events(), 2)
	assert.Len(t, r.BySubject(SubjectGroupDeleted), 1)

	r.Err = errors.New("bus down")
	assert.Error(t, r.Publish(ctx, ClientDeleted{Metadata: NewMetadata("t1")}))
	assert.Len(t, r.Events(), 2)
}
