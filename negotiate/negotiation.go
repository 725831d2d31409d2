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

import "net/http"

// Negotiation is the per-request negotiation state. It parses the Accept
// header at most once and reuses the bindings' cached priority list.
//
// A Negotiation belongs to a single request and is not safe for
// concurrent use.
type Negotiation struct {
	bindings *Bindings
	header   string

	parsed   bool
	prefs    Preferences
	parseErr error
}

// NewNegotiation returns the negotiation state for one Accept header
// against bindings.
func NewNegotiation(bindings *Bindings, header string) *Negotiation {
	return &Negotiation{
		bindings: bindings,
		header:   header,
	}
}

// FromRequest is NewNegotiation for r's Accept header.
// A missing header is treated as */*.
func FromRequest(bindings *Bindings, r *http.Request) *Negotiation {
	return NewNegotiation(bindings, r.Header.Get("Accept"))
}

// Header returns the raw Accept header.
func (n *Negotiation) Header() string {
	return n.header
}

// Preferences returns the parsed request preferences together with any
// malformed-segment error from parsing. Both are computed on the first
// call; later calls return the same slice.
func (n *Negotiation) Preferences() (Preferences, error) {
	if !n.parsed {
		n.prefs, n.parseErr = ParsePreferences(n.header)
		n.parsed = true
	}
	return n.prefs, n.parseErr
}

// Providers returns the bindings' provider priority list.
func (n *Negotiation) Providers() []Binding {
	return n.bindings.Priorities()
}

// Resolve selects the binding for this request. Malformed segments do
// not fail resolution; inspect Preferences for them.
func (n *Negotiation) Resolve() (Binding, error) {
	prefs, _ := n.Preferences()
	return Resolve(prefs, n.bindings)
}
