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

// Package negotiate selects a handler for a request from its Accept header
// and a table of media type bindings.
//
// A view declares which handler serves which media types. A binding may
// carry a quality that ranks it when the client asks for a whole family:
//
//	bindings := negotiate.MustNewBindings(
//	    negotiate.BindQ("text/plain", 0.9, "text_plain"),
//	    negotiate.Bind("text/html", "text_html"),
//	    negotiate.Bind("text/*", "text_default"),
//	    negotiate.Bind("*/*", "default"),
//	)
//
// For every request the Accept header is parsed into preferences and the
// first preference a binding can serve wins:
//
//	n := negotiate.FromRequest(bindings, r)
//	binding, err := n.Resolve()
//	if errors.Is(err, negotiate.ErrNotAcceptable) {
//	    // 406
//	}
//
// # Ordering
//
// Request preferences are ordered by quality, keeping header order for
// ties. */* is always tried last and a family wildcard never goes before
// an exact type of the same family.
//
// Bindings are ordered with exact patterns first, then family wildcards,
// then */*; within each group higher quality comes first and declaration
// order breaks ties.
//
// # Matching
//
// An exact preference such as text/csv is looked up in the table as
// text/csv and then as text/*. A family preference such as text/* takes
// the highest ranked binding in the text family. */* only matches a */*
// binding, so views that want to answer clients without an Accept header
// should declare one.
//
// # Binding files
//
// Tables can be kept in YAML, TOML or JSON files and loaded with LoadFile
// or Decode. Files are checked against an embedded JSON schema before use.
//
// This package implements the subset of Accept semantics needed for
// dispatch: type/subtype and q. Other media type parameters are ignored.
package negotiate
