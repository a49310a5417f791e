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

// Package nats carries events and commands over NATS JetStream.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
	"github.com/opentrusty/clientmanagement/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Header keys set on every published event.
const (
	HeaderCorrelationID = "Correlation-Id"
	HeaderTenantID      = "Tenant-Id"
	HeaderSource        = "Source"
)

// Config holds the JetStream settings.
type Config struct {
	URL        string
	Stream     string
	Durable    string
	MaxDeliver int
	AckWait    time.Duration
}

// Bus publishes events and consumes commands on one JetStream stream.
type Bus struct {
	nc          *nats.Conn
	js          jetstream.JetStream
	cfg         Config
	instruments *metrics.Instruments
}

// Connect establishes a connection to NATS and ensures the stream exists.
func Connect(ctx context.Context, cfg Config, instruments *metrics.Instruments) (*Bus, error) {
	if instruments == nil {
		instruments = metrics.NoopInstruments()
	}

	nc, err := nats.Connect(cfg.URL, nats.Name("clientmanagement"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{event.SubjectWildcard},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.InfoContext(ctx, "nats connected", logger.String("url", cfg.URL), logger.String("stream", cfg.Stream))
	return &Bus{nc: nc, js: js, cfg: cfg, instruments: instruments}, nil
}

// Publish implements event.Publisher. The payload is the JSON encoding of e
// and the trace context travels in the headers.
func (b *Bus) Publish(ctx context.Context, e event.Event) error {
	subject := e.Subject()
	data, err := json.Marshal(e)
	if err != nil {
		b.instruments.PublishFailures.Add(ctx, 1, metrics.Subject(subject))
		return fmt.Errorf("encode %s: %w", subject, err)
	}

	meta := e.Meta()
	msg := &nats.Msg{Subject: subject, Data: data, Header: nats.Header{}}
	msg.Header.Set(nats.MsgIdHdr, MessageID(meta, subject))
	msg.Header.Set(HeaderCorrelationID, meta.CorrelationID)
	msg.Header.Set(HeaderTenantID, meta.TenantID)
	msg.Header.Set(HeaderSource, meta.Source)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	ack, err := b.js.PublishMsg(ctx, msg)
	if err != nil {
		b.instruments.PublishFailures.Add(ctx, 1, metrics.Subject(subject))
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	if Deduplicated(ack) {
		slog.InfoContext(ctx, "event dropped as duplicate by stream",
			logger.String("subject", subject),
			logger.String("msg_id", MessageID(meta, subject)),
			logger.String("correlation_id", meta.CorrelationID),
			logger.String("tenant_id", meta.TenantID),
		)
		return nil
	}
	b.instruments.EventsPublished.Add(ctx, 1, metrics.Subject(subject))
	return nil
}

// MessageID is the JetStream de-duplication id of an event. A command that is
// redelivered within the stream's duplicate window re-announces under the same
// id, so the stream keeps only the first copy.
func MessageID(meta event.Metadata, subject string) string {
	return meta.CorrelationID + ":" + subject
}

// Deduplicated reports whether the stream discarded the message as a repeat.
func Deduplicated(ack *jetstream.PubAck) bool {
	return ack != nil && ack.Duplicate
}

// Close drains the connection so in-flight acks are flushed.
func (b *Bus) Close() error {
	return b.nc.Drain()
}
