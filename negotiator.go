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
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"rivaas.dev/views/negotiate"
)

// HandlerFunc renders one representation of a resource.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Negotiator dispatches each request to the handler bound to the media
// type that best satisfies its Accept header.
//
// A Negotiator is immutable after construction and safe for concurrent
// use. The zero value is not usable; every call reports
// ErrMisconfiguredView.
type Negotiator struct {
	bindings  *negotiate.Bindings
	handlers  map[string]HandlerFunc
	cfg       *config
	telemetry *telemetry
}

var _ View = (*Negotiator)(nil)
var _ http.Handler = (*Negotiator)(nil)

// NewNegotiator creates a Negotiator for bindings. Every handler id named
// by bindings must be present in handlers; extra entries are ignored.
//
// A request without an Accept header counts as */* and only matches a */*
// binding. Without one such requests get 406 Not Acceptable.
//
// Example:
//
//	bindings := negotiate.MustNewBindings(
//	    negotiate.Bind("text/html", "html"),
//	    negotiate.Bind("application/json", "json"),
//	    negotiate.Bind("*/*", "html"),
//	)
//	n, err := views.NewNegotiator(bindings, map[string]views.HandlerFunc{
//	    "html": renderHTML,
//	    "json": renderJSON,
//	})
func NewNegotiator(bindings *negotiate.Bindings, handlers map[string]HandlerFunc, opts ...Option) (*Negotiator, error) {
	if bindings.Len() == 0 {
		return nil, fmt.Errorf("%w: no media type bindings", ErrMisconfiguredView)
	}

	bound := make(map[string]HandlerFunc, len(handlers))
	for _, id := range bindings.Handlers() {
		h, ok := handlers[id]
		if !ok || h == nil {
			return nil, fmt.Errorf("%w: no handler for %q", ErrMisconfiguredView, id)
		}
		bound[id] = h
	}

	// Computed once per binding table and shared by every request.
	bindings.Priorities()

	cfg := newConfig(opts)
	return &Negotiator{
		bindings:  bindings,
		handlers:  bound,
		cfg:       cfg,
		telemetry: newTelemetry(cfg.meterProvider),
	}, nil
}

// MustNewNegotiator is like NewNegotiator but panics on error.
// Use it for package-level views whose bindings are fixed at compile time.
func MustNewNegotiator(bindings *negotiate.Bindings, handlers map[string]HandlerFunc, opts ...Option) *Negotiator {
	n, err := NewNegotiator(bindings, handlers, opts...)
	if err != nil {
		panic(fmt.Sprintf("views: %v", err))
	}
	return n
}

// Bindings returns the binding table the negotiator dispatches on.
func (n *Negotiator) Bindings() *negotiate.Bindings {
	if n == nil {
		return nil
	}
	return n.bindings
}

// Select picks the binding and handler for r without invoking it.
//
// The error is a *negotiate.NotAcceptableError when nothing fits, a
// malformed-preference error in strict mode, or ErrMisconfiguredView
// on a zero-value Negotiator.
func (n *Negotiator) Select(r *http.Request) (negotiate.Binding, HandlerFunc, error) {
	if !n.usable() {
		return negotiate.Binding{}, nil, ErrMisconfiguredView
	}

	ctx := r.Context()
	neg := negotiate.FromRequest(n.bindings, r)

	prefs, perr := neg.Preferences()
	if perr != nil {
		if n.cfg.strict {
			n.telemetry.failed(ctx, outcomeMalformed, neg.Header())
			return negotiate.Binding{}, nil, perr
		}
		n.cfg.log(ctx, slog.LevelWarn, "ignoring malformed accept segment",
			"path", r.URL.Path, "accept", neg.Header(), "error", perr)
	}

	binding, err := neg.Resolve()
	if err != nil {
		n.telemetry.failed(ctx, outcomeNotAcceptable, neg.Header())
		n.cfg.log(ctx, slog.LevelDebug, "no acceptable handler",
			"path", r.URL.Path, "accept", neg.Header(), "preferences", prefs.String())
		return negotiate.Binding{}, nil, err
	}

	n.telemetry.matched(ctx, binding.Handler, binding.Pattern.String())
	return binding, n.handlers[binding.Handler], nil
}

// Serve implements View. It adds "Accept" to the Vary header, selects a
// handler, and returns whatever the handler returns.
func (n *Negotiator) Serve(w http.ResponseWriter, r *http.Request) error {
	if n.usable() {
		w.Header().Add("Vary", "Accept")
	}

	_, h, err := n.Select(r)
	if err != nil {
		return err
	}
	return h(w, r)
}

// ServeHTTP implements http.Handler. Errors are written with the
// configured problem.Formatter.
func (n *Negotiator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := n.config()
	sw := &statusWriter{ResponseWriter: w}
	if err := n.Serve(sw, r); err != nil {
		cfg.fail(sw, r, err)
	}
}

func (n *Negotiator) usable() bool {
	return n != nil && n.cfg != nil && n.bindings.Len() > 0
}

var fallbackConfig = sync.OnceValue(defaultConfig)

func (n *Negotiator) config() *config {
	if n != nil && n.cfg != nil {
		return n.cfg
	}
	return fallbackConfig()
}
