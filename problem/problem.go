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

// Package problem turns errors returned by views into HTTP responses.
//
// Errors choose their own status by implementing StatusCoder and may add
// a machine-readable code with Coder. Everything else becomes a 500.
//
//	formatter := problem.NewRFC9457("https://example.com/problems")
//	problem.Write(w, r, formatter, err)
package problem

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Formatter converts an error into the parts of an HTTP response.
type Formatter interface {
	Format(req *http.Request, err error) Response
}

// Response is a formatted error response.
type Response struct {
	Status      int
	ContentType string
	Body        any
}

// StatusCoder is implemented by errors that know their HTTP status.
type StatusCoder interface {
	error
	HTTPStatus() int
}

// Coder is implemented by errors that carry a machine-readable code.
type Coder interface {
	error
	Code() string
}

// WithStatus wraps err so that it reports status. A nil err takes the
// status text as its message.
//
// Example:
//
//	return problem.WithStatus(err, http.StatusNotFound)
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func (e *statusError) HTTPStatus() int {
	return e.status
}

// StatusOf returns the status err declares, or 500.
func StatusOf(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// CodeOf returns the code err declares, or "".
func CodeOf(err error) string {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// Write formats err with f and writes the response to w.
// The returned error is the encoder's.
func Write(w http.ResponseWriter, r *http.Request, f Formatter, err error) error {
	resp := f.Format(r, err)

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(resp.Status)

	return json.NewEncoder(w).Encode(resp.Body)
}
