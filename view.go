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
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"rivaas.dev/views/problem"
)

// View serves a single request. Returning an error lets the caller decide
// how the failure is rendered; see problem.Formatter.
type View interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

// ViewFunc adapts an ordinary function to the View interface.
type ViewFunc func(w http.ResponseWriter, r *http.Request) error

// Serve calls f(w, r).
func (f ViewFunc) Serve(w http.ResponseWriter, r *http.Request) error {
	return f(w, r)
}

// Factory builds a fresh View for each request, so per-request state can
// live on the view value.
type Factory func(r *http.Request) (View, error)

// Finisher is implemented by views that post-process their own output.
// When a view implements Finisher its output is buffered into a Response,
// After is called, and only then is the response written to the client.
type Finisher interface {
	After(resp *Response) error
}

// Response is a buffered http.ResponseWriter. Views that implement
// Finisher write into it and may rewrite the status, headers, or body in
// After.
type Response struct {
	// Status is the response status code; zero means 200 OK.
	Status int

	// Body holds everything written so far.
	Body bytes.Buffer

	header http.Header
}

func newResponse() *Response {
	return &Response{header: make(http.Header)}
}

// Header implements http.ResponseWriter.
func (r *Response) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// Write implements http.ResponseWriter.
func (r *Response) Write(p []byte) (int, error) {
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
	return r.Body.Write(p)
}

// WriteHeader implements http.ResponseWriter. Only the first call has effect.
func (r *Response) WriteHeader(status int) {
	if r.Status == 0 {
		r.Status = status
	}
}

// flush copies the buffered response to w.
func (r *Response) flush(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = v
	}

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	_, err := w.Write(r.Body.Bytes())
	return err
}

// statusWriter records whether the response has started so errors
// returned after the first write are not rendered into the body.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(p)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *statusWriter) started() bool {
	return w.status != 0
}

// Create returns a handler that builds a view with factory for every
// request and serves it.
//
// Errors from the factory or the view are written with the configured
// problem.Formatter unless the view has already started the response.
//
// Example:
//
//	type articleView struct{ id string }
//
//	func (v *articleView) Serve(w http.ResponseWriter, r *http.Request) error { ... }
//
//	mux.Handle("GET /articles/{id}", views.Create(func(r *http.Request) (views.View, error) {
//	    return &articleView{id: r.PathValue("id")}, nil
//	}))
func Create(factory Factory, opts ...Option) http.Handler {
	cfg := newConfig(opts)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if factory == nil {
			cfg.fail(w, r, ErrMisconfiguredView)
			return
		}

		v, err := factory(r)
		if err != nil {
			cfg.fail(w, r, err)
			return
		}
		if v == nil {
			cfg.fail(w, r, ErrNilView)
			return
		}

		if f, ok := v.(Finisher); ok {
			cfg.serveBuffered(w, r, v, f)
			return
		}

		sw := &statusWriter{ResponseWriter: w}
		if err := v.Serve(sw, r); err != nil {
			cfg.fail(sw, r, err)
		}
	})
}

func (cfg *config) serveBuffered(w http.ResponseWriter, r *http.Request, v View, f Finisher) {
	resp := newResponse()

	err := v.Serve(resp, r)
	if err == nil {
		err = f.After(resp)
	}
	if err != nil {
		cfg.fail(w, r, err)
		return
	}

	if err := resp.flush(w); err != nil {
		cfg.log(r.Context(), slog.LevelDebug, "failed to write response", "path", r.URL.Path, "error", err)
	}
}

// fail renders err with the configured formatter.
func (cfg *config) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := problem.StatusOf(err)
	if status >= http.StatusInternalServerError {
		cfg.log(r.Context(), slog.LevelError, "view failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		cfg.log(r.Context(), slog.LevelDebug, "view rejected request", "path", r.URL.Path, "status", status, "error", err)
	}

	if sw, ok := w.(*statusWriter); ok && sw.started() {
		cfg.log(r.Context(), slog.LevelWarn, "view returned error after writing response", "path", r.URL.Path, "error", err)
		return
	}

	if werr := problem.Write(w, r, cfg.formatter, err); werr != nil {
		cfg.log(r.Context(), slog.LevelDebug, "failed to write error response", "path", r.URL.Path, "error", werr)
	}
}

func (cfg *config) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if cfg.logger == nil {
		return
	}
	cfg.logger.Log(ctx, level, msg, args...)
}
