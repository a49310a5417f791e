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

package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConnect connects to NATS or skips the test if NATS_URL is not set.
func testConnect(t *testing.T) *Bus {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	b, err := Connect(context.Background(), Config{
		URL:        url,
		Stream:     "CLIENTMANAGEMENT_TEST",
		Durable:    "clientmanagement-test",
		MaxDeliver: 3,
		AckWait:    5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// TestPurpose: Validates that published events carry JSON payloads and correlation headers.
// Scope: Integration Test (NATS)
// Expected: The stored message decodes to the published event and carries the metadata headers.
// Test Case ID: BUS-02
func TestBus_Publish(t *testing.T) {
	b := testConnect(t)
	ctx := context.Background()

	ev := event.GroupCreated{
		Metadata:  event.Correlated("acme", "corr-"+t.Name()),
		GroupID:   "g-1",
		Name:      "VIP",
		CreatedAt: time.Now().UTC(),
		CreatedBy: "admin",
	}
	require.NoError(t, b.Publish(ctx, ev))

	stream, err := b.js.Stream(ctx, b.cfg.Stream)
	require.NoError(t, err)
	msg, err := stream.GetLastMsgForSubject(ctx, event.SubjectGroupCreated)
	require.NoError(t, err)

	var got event.GroupCreated
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "VIP", got.Name)
	assert.Equal(t, "acme", got.TenantID)
	assert.Equal(t, "corr-"+t.Name(), msg.Header.Get(HeaderCorrelationID))
	assert.Equal(t, event.Source, msg.Header.Get(HeaderSource))
}

type recordingHandler struct {
	got chan string
}

func (h recordingHandler) Handle(_ context.Context, cmd tenant.InitializeCommand) error {
	h.got <- cmd.TenantID
	return nil
}

// TestPurpose: Validates the durable initialize consumer end to end.
// Scope: Integration Test (NATS)
// Expected: A command published on the command subject reaches the handler.
// Test Case ID: BUS-03
func TestBus_SubscribeInitialize(t *testing.T) {
	b := testConnect(t)
	ctx := context.Background()

	h := recordingHandler{got: make(chan string, 1)}
	stop, err := b.SubscribeInitialize(ctx, h)
	require.NoError(t, err)
	defer stop()

	_, err = b.js.Publish(ctx, event.SubjectInitializeCommand, []byte(validCommand), jetstream.WithMsgID("cmd-"+t.Name()))
	require.NoError(t, err)

	select {
	case tenantID := <-h.got:
		assert.Equal(t, "acme", tenantID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for command")
	}
}

// TestPurpose: Validates the de-duplication id and the duplicate-ack check.
// Scope: Unit Test
// Expected: The id joins correlation id and subject; only an ack flagged Duplicate counts as dropped.
// Test Case ID: BUS-04
func TestMessageID_Deduplicated(t *testing.T) {
	meta := event.Correlated("acme", "saga-1")
	assert.Equal(t, "saga-1:"+event.SubjectInitialized, MessageID(meta, event.SubjectInitialized))
	assert.NotEqual(t, MessageID(meta, event.SubjectInitialized), MessageID(meta, event.SubjectGroupCreated))

	assert.False(t, Deduplicated(nil))
	assert.False(t, Deduplicated(&jetstream.PubAck{Stream: "CLIENTMANAGEMENT", Sequence: 7}))
	assert.True(t, Deduplicated(&jetstream.PubAck{Stream: "CLIENTMANAGEMENT", Sequence: 7, Duplicate: true}))
}

// TestPurpose: Validates that a re-announcement inside the duplicate window succeeds without a second copy.
// Scope: Integration Test (NATS)
// Expected: Both publishes return nil and the stream keeps only the first message for the subject.
// Test Case ID: BUS-05
func TestBus_Publish_DuplicateIsDropped(t *testing.T) {
	b := testConnect(t)
	ctx := context.Background()

	ev := event.GroupCreated{
		Metadata:  event.Correlated("acme", "dup-"+t.Name()),
		GroupID:   "g-2",
		Name:      "Premium",
		CreatedAt: time.Now().UTC(),
		CreatedBy: "admin",
	}
	require.NoError(t, b.Publish(ctx, ev))

	stream, err := b.js.Stream(ctx, b.cfg.Stream)
	require.NoError(t, err)
	first, err := stream.GetLastMsgForSubject(ctx, event.SubjectGroupCreated)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, ev))
	last, err := stream.GetLastMsgForSubject(ctx, event.SubjectGroupCreated)
	require.NoError(t, err)
	assert.Equal(t, first.Sequence, last.Sequence)
}
