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

// Package views provides net/http views that render one resource in
// several representations, chosen by the request's Accept header.
//
// A Negotiator holds a binding table (see package negotiate) and one
// handler per binding. For each request it picks the best handler and
// calls it:
//
//	bindings := negotiate.MustNewBindings(
//	    negotiate.Bind("text/html", "html"),
//	    negotiate.Bind("application/json", "json"),
//	    negotiate.Bind("*/*", "html"),
//	)
//
//	articles := views.MustNewNegotiator(bindings, map[string]views.HandlerFunc{
//	    "html": renderArticleHTML,
//	    "json": renderArticleJSON,
//	})
//
//	mux.Handle("GET /articles/{id}", articles)
//
// A request that no binding can serve gets 406 Not Acceptable. A request
// without an Accept header, or with Accept: */* (curl's default), is only
// served by a */* binding, so tables that should answer such clients need
// one. A negotiator without bindings, or with a binding whose handler is
// missing, is rejected at construction with ErrMisconfiguredView.
//
// # Per-request views
//
// Create builds a fresh View for each request through a Factory. A view
// that also implements Finisher has its output buffered so After can
// rewrite the status, headers, or body before anything reaches the client.
//
// # Errors
//
// Views return errors instead of writing them. Errors are rendered by a
// problem.Formatter (RFC 9457 problem details by default) with the status
// the error declares through HTTPStatus, or 500.
//
// # Observability
//
// Each negotiation is counted in the views.negotiations metric by outcome,
// and the chosen handler and media type are recorded on the request's
// active span. Diagnostics go to slog.Default() unless WithLogger or
// WithoutLogging is given.
package views
