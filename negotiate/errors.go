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

package negotiate

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotAcceptable indicates that no binding satisfies any of the
	// request's preferences. It is an expected outcome and maps to
	// 406 Not Acceptable at the HTTP boundary.
	ErrNotAcceptable = errors.New("no acceptable handler")

	// ErrMalformedPreference indicates an Accept segment whose q value
	// is not a number or whose media range has no subtype.
	ErrMalformedPreference = errors.New("malformed accept preference")

	// ErrInvalidBinding indicates a binding table entry that cannot be used:
	// an empty pattern or handler, or a quality outside [0, 1].
	ErrInvalidBinding = errors.New("invalid binding")

	// ErrUnsupportedFormat indicates a binding file in a format Decode does not know.
	ErrUnsupportedFormat = errors.New("unsupported binding format")
)

// errNoSubtype is the parse failure for a media range without a slash.
var errNoSubtype = errors.New("no subtype")

// MalformedPreferenceError describes one Accept segment that was dropped
// because its q parameter or its media range could not be parsed.
type MalformedPreferenceError struct {
	Segment string // The raw segment, trimmed
	Value   string // The offending q value or media range
	Err     error  // The parse failure
}

func (e *MalformedPreferenceError) Error() string {
	if errors.Is(e.Err, errNoSubtype) {
		return fmt.Sprintf("accept segment %q: media range %q has no subtype", e.Segment, e.Value)
	}
	return fmt.Sprintf("accept segment %q: invalid q value %q: %v", e.Segment, e.Value, e.Err)
}

func (e *MalformedPreferenceError) Unwrap() error {
	return e.Err
}

// Is reports ErrMalformedPreference as a match.
func (e *MalformedPreferenceError) Is(target error) bool {
	return target == ErrMalformedPreference
}

// HTTPStatus returns 400 Bad Request.
func (e *MalformedPreferenceError) HTTPStatus() int {
	return http.StatusBadRequest
}

// Code returns a machine-readable error code.
func (e *MalformedPreferenceError) Code() string {
	return "malformed_accept"
}

// NotAcceptableError is returned by Resolve when nothing matched.
type NotAcceptableError struct {
	// Preferences are the request preferences that were tried, in order.
	Preferences Preferences
}

func (e *NotAcceptableError) Error() string {
	types := make([]string, len(e.Preferences))
	for i, p := range e.Preferences {
		types[i] = p.MediaType.String()
	}
	return fmt.Sprintf("%v: tried %s", ErrNotAcceptable, strings.Join(types, ", "))
}

func (e *NotAcceptableError) Unwrap() error {
	return ErrNotAcceptable
}

// HTTPStatus returns 406 Not Acceptable.
func (e *NotAcceptableError) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// Code returns a machine-readable error code.
func (e *NotAcceptableError) Code() string {
	return "not_acceptable"
}

// LoadError describes a failure while loading a binding table from a file
// or byte slice.
type LoadError struct {
	Source    string // File name or "<bytes>"
	Operation string // "read", "decode", "validate" or "bind"
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("bindings error in %s during %s: %v", e.Source, e.Operation, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
