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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"unknown subtype falls back to family binding", "text/somethingelse, */*", "text_default"},
		{"no header uses the any binding", "", "default"},
		{"exact match", "text/plain", "text_plain"},
		{"exact match ignores binding quality", "text/plain, text/html", "text_plain"},
		{"family request takes highest ranked member", "text/*", "text_html"},
		{"lower quality exact beats wildcard", "*/*, text/plain;q=0.1", "text_plain"},
		{"unknown family falls through to any", "application/json, */*;q=0.1", "default"},
		{"invalid segments fall back to any", "text/plain;q=2", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prefs, err := ParsePreferences(tt.accept)
			require.NoError(t, err)

			got, err := Resolve(prefs, textBindings(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Handler)
		})
	}
}

func TestResolve_NotAcceptable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bindings *Bindings
		accept   string
	}{
		{
			name:     "exact type without family binding",
			bindings: textBindings(t),
			accept:   "application/json",
		},
		{
			name:     "family without members",
			bindings: textBindings(t),
			accept:   "image/*",
		},
		{
			name:     "any without an any binding",
			bindings: MustNewBindings(Bind("text/html", "html")),
			accept:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prefs, err := ParsePreferences(tt.accept)
			require.NoError(t, err)

			_, err = Resolve(prefs, tt.bindings)
			require.ErrorIs(t, err, ErrNotAcceptable)

			var notAcceptable *NotAcceptableError
			require.ErrorAs(t, err, &notAcceptable)
			assert.Equal(t, prefs, notAcceptable.Preferences)
			assert.Equal(t, http.StatusNotAcceptable, notAcceptable.HTTPStatus())
			assert.Equal(t, "not_acceptable", notAcceptable.Code())
			assert.Contains(t, err.Error(), prefs[0].MediaType.String())
		})
	}
}

func TestNegotiation(t *testing.T) {
	t.Parallel()

	t.Run("preferences are parsed once", func(t *testing.T) {
		t.Parallel()

		n := NewNegotiation(textBindings(t), "text/plain, text/html;q=0.5, text/*")
		first, err := n.Preferences()
		require.NoError(t, err)
		second, err := n.Preferences()
		require.NoError(t, err)

		assert.Same(t, &first[0], &second[0])

		fresh, err := NewNegotiation(textBindings(t), n.Header()).Preferences()
		require.NoError(t, err)
		assert.Equal(t, first, fresh)
	})

	t.Run("providers come from the shared table", func(t *testing.T) {
		t.Parallel()

		b := textBindings(t)
		n := NewNegotiation(b, "")
		first := n.Providers()
		second := n.Providers()

		assert.Same(t, &first[0], &second[0])
		assert.Same(t, &b.Priorities()[0], &first[0])
	})

	t.Run("malformed segments are kept with the preferences", func(t *testing.T) {
		t.Parallel()

		n := NewNegotiation(textBindings(t), "text/html;q=oops, text/plain")
		_, err := n.Preferences()
		require.ErrorIs(t, err, ErrMalformedPreference)

		got, err := n.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "text_plain", got.Handler)
	})

	t.Run("from request", func(t *testing.T) {
		t.Parallel()

		req, err := http.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, err)
		req.Header.Set("Accept", "text/somethingelse, */*")

		got, err := FromRequest(textBindings(t), req).Resolve()
		require.NoError(t, err)
		assert.Equal(t, "text_default", got.Handler)
	})
}
