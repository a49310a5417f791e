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
	"log/slog"
	"sync"

	"github.com/opentrusty/clientmanagement/internal/observability/logger"
)

// Recorder keeps published events in memory. Setting Err makes every
// Publish fail after recording nothing.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// BySubject returns the recorded events published on subject.
func (r *Recorder) BySubject(subject string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Subject() == subject {
			out = append(out, e)
		}
	}
	return out
}

// LogPublisher writes events to the structured log instead of a bus.
// Used when no bus is configured in development.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, e Event) error {
	m := e.Meta()
	slog.InfoContext(ctx, "event published to log",
		logger.Subject(e.Subject()),
		logger.TenantID(m.TenantID),
		logger.CorrelationID(m.CorrelationID),
	)
	return nil
}
