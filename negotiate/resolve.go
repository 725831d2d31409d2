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

// Resolve selects the binding that serves the first satisfiable preference.
//
// Preferences are tried in order. A family wildcard preference (text/*,
// and */* alike) takes the highest priority binding of that family. Any
// other preference takes the binding declared for exactly that type,
// falling back to the one declared for its family wildcard.
//
// When no preference can be served the error is a *NotAcceptableError
// matching ErrNotAcceptable.
func Resolve(prefs Preferences, b *Bindings) (Binding, error) {
	providers := b.Priorities()

	for _, pref := range prefs {
		if binding, ok := resolveOne(pref.MediaType, b, providers); ok {
			return binding, nil
		}
	}

	return Binding{}, &NotAcceptableError{Preferences: prefs}
}

func resolveOne(want MediaType, b *Bindings, providers []Binding) (Binding, bool) {
	if want.Subtype == Wildcard {
		for _, p := range providers {
			if p.Pattern.Type == want.Type {
				return p, true
			}
		}
		return Binding{}, false
	}

	if binding, ok := b.Lookup(want); ok {
		return binding, true
	}
	return b.Lookup(want.Family())
}
