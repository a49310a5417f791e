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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps OpenTelemetry meter
type Meter struct {
	meter metric.Meter
}

// New returns a meter from the global provider, or a noop meter when
// disabled. Exporter wiring belongs to the provider set up by the host.
func New(_ context.Context, cfg Config, serviceName string) (*Meter, error) {
	if !cfg.Enabled {
		return &Meter{meter: noop.NewMeterProvider().Meter("noop")}, nil
	}
	return &Meter{meter: otel.Meter(serviceName)}, nil
}

// CreateCounter creates a new counter metric
func (m *Meter) CreateCounter(name, description string) (metric.Int64Counter, error) {
	counter, err := m.meter.Int64Counter(
		name,
		metric.WithDescription(description),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return counter, nil
}

// Instruments are the counters this service reports.
type Instruments struct {
	EventsPublished metric.Int64Counter
	PublishFailures metric.Int64Counter
	RPCErrors       metric.Int64Counter
	CommandsHandled metric.Int64Counter
}

// NewInstruments registers the service counters on m.
func NewInstruments(m *Meter) (*Instruments, error) {
	published, err := m.CreateCounter("clientmanagement.events.published", "Events delivered to the bus")
	if err != nil {
		return nil, err
	}
	failures, err := m.CreateCounter("clientmanagement.events.publish_failures", "Events that could not be delivered after the write committed")
	if err != nil {
		return nil, err
	}
	rpcErrors, err := m.CreateCounter("clientmanagement.rpc.errors", "Facade responses by error code")
	if err != nil {
		return nil, err
	}
	commands, err := m.CreateCounter("clientmanagement.commands.handled", "Inbound commands by outcome")
	if err != nil {
		return nil, err
	}
	return &Instruments{
		EventsPublished: published,
		PublishFailures: failures,
		RPCErrors:       rpcErrors,
		CommandsHandled: commands,
	}, nil
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	in, _ := NewInstruments(&Meter{meter: noop.NewMeterProvider().Meter("noop")})
	return in
}

// Subject is the attribute set for a bus subject.
func Subject(subject string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("subject", subject))
}

// Code is the attribute set for an error or outcome code.
func Code(code string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("code", code))
}
