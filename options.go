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
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/views/problem"
)

// Option configures Create and NewNegotiator.
type Option func(*config)

// config holds the settings shared by views and negotiators.
type config struct {
	// logger receives dispatch diagnostics; nil disables logging
	logger *slog.Logger

	// formatter renders errors returned by views
	formatter problem.Formatter

	// strict fails requests whose Accept header has a malformed q value
	strict bool

	// meterProvider supplies the negotiation outcome counter
	meterProvider metric.MeterProvider
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		logger:        slog.Default(),
		formatter:     problem.NewRFC9457(""),
		meterProvider: otel.GetMeterProvider(),
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.formatter == nil {
		cfg.formatter = problem.NewRFC9457("")
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}
	return cfg
}

// WithLogger sets the logger for dispatch diagnostics.
// By default slog.Default() is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	views.NewNegotiator(bindings, handlers, views.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithoutLogging disables logging.
func WithoutLogging() Option {
	return func(cfg *config) {
		cfg.logger = nil
	}
}

// WithErrorFormatter sets how errors are written to the client.
// Default: problem.NewRFC9457("").
//
// Example:
//
//	views.Create(factory, views.WithErrorFormatter(problem.NewSimple()))
func WithErrorFormatter(f problem.Formatter) Option {
	return func(cfg *config) {
		cfg.formatter = f
	}
}

// WithStrictAccept controls how an Accept segment with a non-numeric q
// value is treated. When strict, the request fails with 400 Bad Request.
// Otherwise the segment is ignored and a warning is logged.
// Default: false
func WithStrictAccept(strict bool) Option {
	return func(cfg *config) {
		cfg.strict = strict
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider used for the
// views.negotiations counter. Default: the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *config) {
		cfg.meterProvider = mp
	}
}
