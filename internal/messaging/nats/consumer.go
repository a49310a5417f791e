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
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/opentrusty/clientmanagement/internal/event"
	"github.com/opentrusty/clientmanagement/internal/observability/logger"
	"github.com/opentrusty/clientmanagement/internal/observability/metrics"
	"github.com/opentrusty/clientmanagement/internal/tenant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// CommandHandler processes initialize commands.
type CommandHandler interface {
	Handle(ctx context.Context, cmd tenant.InitializeCommand) error
}

// Outcomes recorded on the commands counter.
const (
	outcomeAcked      = "acked"
	outcomeRetried    = "retried"
	outcomeTerminated = "terminated"
)

// message is the part of jetstream.Msg the dispatcher needs.
type message interface {
	Data() []byte
	Headers() nats.Header
	Ack() error
	Nak() error
	Term() error
}

// SubscribeInitialize binds the durable initialize-command consumer to h.
// The returned function stops delivery.
func (b *Bus) SubscribeInitialize(ctx context.Context, h CommandHandler) (func(), error) {
	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.cfg.Stream, jetstream.ConsumerConfig{
		Durable:       b.cfg.Durable,
		FilterSubject: event.SubjectInitializeCommand,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    b.cfg.MaxDeliver,
		AckWait:       b.cfg.AckWait,
	})
	if err != nil {
		return nil, fmt.Errorf("nats consumer create: %w", err)
	}

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		dispatch(ctx, msg, h, b.instruments)
	})
	if err != nil {
		return nil, fmt.Errorf("nats consume: %w", err)
	}

	slog.InfoContext(ctx, "initialize consumer started",
		logger.Subject(event.SubjectInitializeCommand), logger.String("durable", b.cfg.Durable))
	return cons.Stop, nil
}

// dispatch decodes one command, runs h and settles the message. Malformed
// or invalid commands are terminated; any other failure is redelivered.
func dispatch(ctx context.Context, msg message, h CommandHandler, instruments *metrics.Instruments) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(msg.Headers()))

	var cmd tenant.InitializeCommand
	if err := json.Unmarshal(msg.Data(), &cmd); err != nil {
		slog.ErrorContext(ctx, "dropping undecodable initialize command", logger.Error(err))
		settle(ctx, msg.Term, outcomeTerminated, instruments)
		return
	}

	err := h.Handle(ctx, cmd)
	switch {
	case err == nil:
		settle(ctx, msg.Ack, outcomeAcked, instruments)
	case errors.Is(err, tenant.ErrInvalidCommand):
		slog.ErrorContext(ctx, "rejecting initialize command",
			logger.TenantID(cmd.TenantID), logger.CorrelationID(cmd.CorrelationID), logger.Error(err))
		settle(ctx, msg.Term, outcomeTerminated, instruments)
	default:
		slog.ErrorContext(ctx, "initialize command failed, requesting redelivery",
			logger.TenantID(cmd.TenantID), logger.CorrelationID(cmd.CorrelationID), logger.Error(err))
		settle(ctx, msg.Nak, outcomeRetried, instruments)
	}
}

func settle(ctx context.Context, fn func() error, outcome string, instruments *metrics.Instruments) {
	instruments.CommandsHandled.Add(ctx, 1, metrics.Code(outcome))
	if err := fn(); err != nil {
		slog.ErrorContext(ctx, "nats settle failed", logger.String("outcome", outcome), logger.Error(err))
	}
}
