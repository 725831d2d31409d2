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

import "strings"

// Wildcard is the subtype (or type) that matches anything.
const Wildcard = "*"

// MediaType is a "type/subtype" pair such as text/html.
// Either part may be the wildcard "*".
type MediaType struct {
	Type    string
	Subtype string
}

// Any is the full wildcard */*.
var Any = MediaType{Type: Wildcard, Subtype: Wildcard}

// ParseMediaType parses a "type/subtype" string.
// Surrounding whitespace is trimmed and both parts are lowercased.
// A value without a slash is read as a family wildcard, so "text"
// becomes text/*. This shorthand is for binding patterns; ParsePreferences
// rejects request segments without a slash.
func ParseMediaType(s string) MediaType {
	s = strings.ToLower(strings.TrimSpace(s))

	family, subtype, found := strings.Cut(s, "/")
	if !found {
		return MediaType{Type: family, Subtype: Wildcard}
	}

	return MediaType{
		Type:    strings.TrimSpace(family),
		Subtype: strings.TrimSpace(subtype),
	}
}

// String returns the canonical "type/subtype" form.
func (m MediaType) String() string {
	return m.Type + "/" + m.Subtype
}

// IsZero reports whether m has no type.
func (m MediaType) IsZero() bool {
	return m.Type == ""
}

// IsFullWildcard reports whether m is */*.
func (m MediaType) IsFullWildcard() bool {
	return m.Type == Wildcard && m.Subtype == Wildcard
}

// IsFamilyWildcard reports whether m names a whole family, e.g. text/*.
// The full wildcard is not a family wildcard.
func (m MediaType) IsFamilyWildcard() bool {
	return m.Subtype == Wildcard && m.Type != Wildcard
}

// Family returns the family wildcard for m's type.
func (m MediaType) Family() MediaType {
	return MediaType{Type: m.Type, Subtype: Wildcard}
}

// Matches reports whether the pattern m covers the concrete media type
// other. Exact types match themselves, family wildcards match every
// member of their family and */* matches everything.
func (m MediaType) Matches(other MediaType) bool {
	switch {
	case m.IsFullWildcard():
		return true
	case m.Subtype == Wildcard:
		return m.Type == other.Type
	default:
		return m == other
	}
}
