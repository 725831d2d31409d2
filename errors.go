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

import "errors"

var (
	// ErrMisconfiguredView indicates a view that can never serve a request:
	// a negotiator without bindings, a binding naming a handler that does
	// not exist, or a zero-value Negotiator.
	ErrMisconfiguredView = errors.New("misconfigured view")

	// ErrNilView indicates a factory that returned neither a view nor an error.
	ErrNilView = errors.New("view factory returned nil view")
)
