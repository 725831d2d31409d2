// Copyright 2025 The Rivaas Authors
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

package views

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "rivaas.dev/views"

// Negotiation outcomes, recorded as the "outcome" attribute.
const (
	outcomeMatched       = "matched"
	outcomeNotAcceptable = "not_acceptable"
	outcomeMalformed     = "malformed"
)

// Span attribute keys.
const (
	attrHandler   = attribute.Key("views.negotiation.handler")
	attrMediaType = attribute.Key("views.negotiation.media_type")
	attrAccept    = attribute.Key("http.request.header.accept")
	attrOutcome   = attribute.Key("outcome")
)

// telemetry records negotiation outcomes as a counter and on the
// request's active span.
type telemetry struct {
	outcomes metric.Int64Counter
}

func newTelemetry(mp metric.MeterProvider) *telemetry {
	counter, err := mp.Meter(instrumentationName).Int64Counter(
		"views.negotiations",
		metric.WithDescription("Content negotiation outcomes"),
		metric.WithUnit("{negotiation}"),
	)
	if err != nil {
		counter = noop.Int64Counter{}
	}
	return &telemetry{outcomes: counter}
}

func (t *telemetry) matched(ctx context.Context, handler, pattern string) {
	t.outcomes.Add(ctx, 1, metric.WithAttributes(
		attrOutcome.String(outcomeMatched),
		attrHandler.String(handler),
	))

	trace.SpanFromContext(ctx).SetAttributes(
		attrHandler.String(handler),
		attrMediaType.String(pattern),
	)
}

func (t *telemetry) failed(ctx context.Context, outcome, accept string) {
	t.outcomes.Add(ctx, 1, metric.WithAttributes(attrOutcome.String(outcome)))

	trace.SpanFromContext(ctx).AddEvent("negotiation failed", trace.WithAttributes(
		attrOutcome.String(outcome),
		attrAccept.String(accept),
	))
}
