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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// textBindings is the table used across the resolution tests.
func textBindings(t *testing.T) *Bindings {
	t.Helper()

	b, err := NewBindings(
		BindQ("text/plain", 0.9, "text_plain"),
		Bind("text/html", "text_html"),
		Bind("text/*", "text_default"),
		Bind("*/*", "default"),
	)
	require.NoError(t, err)

	return b
}

func patterns(bindings []Binding) []string {
	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = b.Pattern.String()
	}
	return out
}

func TestBindings_Priorities(t *testing.T) {
	t.Parallel()

	t.Run("exact before family before any", func(t *testing.T) {
		t.Parallel()

		b := textBindings(t)
		assert.Equal(t, []string{"text/html", "text/plain", "text/*", "*/*"}, patterns(b.Priorities()))
	})

	t.Run("map input gives the same order", func(t *testing.T) {
		t.Parallel()

		b, err := BindingsFromMap(map[string]any{
			"text/plain": []any{0.9, "text_plain"},
			"text/html":  "text_html",
			"text/*":     "text_default",
			"*/*":        "default",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"text/html", "text/plain", "text/*", "*/*"}, patterns(b.Priorities()))
	})

	t.Run("family wildcard loses to lower quality exact", func(t *testing.T) {
		t.Parallel()

		b := MustNewBindings(
			Bind("image/*", "image"),
			BindQ("text/csv", 0.1, "csv"),
		)
		assert.Equal(t, []string{"text/csv", "image/*"}, patterns(b.Priorities()))
	})

	t.Run("ties keep declaration order", func(t *testing.T) {
		t.Parallel()

		b := MustNewBindings(Bind("application/json", "json"), Bind("application/xml", "xml"))
		assert.Equal(t, []string{"application/json", "application/xml"}, patterns(b.Priorities()))

		b = MustNewBindings(Bind("application/xml", "xml"), Bind("application/json", "json"))
		assert.Equal(t, []string{"application/xml", "application/json"}, patterns(b.Priorities()))
	})

	t.Run("computed once", func(t *testing.T) {
		t.Parallel()

		b := textBindings(t)
		first := b.Priorities()
		second := b.Priorities()
		require.NotEmpty(t, first)
		assert.Same(t, &first[0], &second[0])

		// A fresh table from the same input is equal but distinct.
		other := textBindings(t).Priorities()
		assert.Equal(t, first, other)
		assert.NotSame(t, &first[0], &other[0])
	})

	t.Run("declaration order is untouched", func(t *testing.T) {
		t.Parallel()

		b := textBindings(t)
		_ = b.Priorities()
		assert.Equal(t, []string{"text/plain", "text/html", "text/*", "*/*"}, patterns(b.Entries()))
	})
}

func TestNewBindings(t *testing.T) {
	t.Parallel()

	t.Run("duplicate pattern replaces in place", func(t *testing.T) {
		t.Parallel()

		b, err := NewBindings(Bind("text/html", "a"), Bind("text/plain", "b"), Bind("text/html", "c"))
		require.NoError(t, err)
		assert.Equal(t, []Binding{Bind("text/html", "c"), Bind("text/plain", "b")}, b.Entries())
		assert.Equal(t, 2, b.Len())
	})

	invalid := []struct {
		name    string
		binding Binding
	}{
		{"empty pattern", Bind("", "h")},
		{"empty subtype", Bind("text/", "h")},
		{"empty handler", Bind("text/html", "")},
		{"quality above one", BindQ("text/html", 1.5, "h")},
		{"negative quality", BindQ("text/html", -0.5, "h")},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewBindings(tt.binding)
			assert.ErrorIs(t, err, ErrInvalidBinding)
		})
	}

	t.Run("must panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { MustNewBindings(Bind("text/html", "")) })
	})
}

func TestBindingsFromMap(t *testing.T) {
	t.Parallel()

	t.Run("value forms", func(t *testing.T) {
		t.Parallel()

		b, err := BindingsFromMap(map[string]any{
			"application/json": [2]any{"0.5", "json"},
			"text/plain":       []any{0.9, "plain"},
			"text/csv":         map[string]any{"q": 0.8, "handler": "csv"},
			"text/html":        map[string]any{"handler": "html"},
			"image/png":        Binding{Quality: 0.3, Handler: "png"},
			"*/*":              "default",
		})
		require.NoError(t, err)

		want := []Binding{
			Bind("*/*", "default"),
			BindQ("application/json", 0.5, "json"),
			BindQ("image/png", 0.3, "png"),
			BindQ("text/csv", 0.8, "csv"),
			Bind("text/html", "html"),
			BindQ("text/plain", 0.9, "plain"),
		}
		assert.Equal(t, want, b.Entries())
	})

	invalid := []struct {
		name  string
		value any
	}{
		{"unsupported type", 5},
		{"short pair", []any{0.5}},
		{"non numeric quality", []any{"high", "h"}},
		{"unknown object key", map[string]any{"handler": "h", "weight": 2}},
		{"object without handler", map[string]any{"q": 0.5}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := BindingsFromMap(map[string]any{"text/html": tt.value})
			assert.ErrorIs(t, err, ErrInvalidBinding)
		})
	}
}

func TestBindings_LookupAndHandlers(t *testing.T) {
	t.Parallel()

	b := textBindings(t)

	got, ok := b.Lookup(ParseMediaType("text/plain"))
	require.True(t, ok)
	assert.Equal(t, BindQ("text/plain", 0.9, "text_plain"), got)

	_, ok = b.Lookup(ParseMediaType("text/csv"))
	assert.False(t, ok)

	assert.Equal(t, []string{"text_plain", "text_html", "text_default", "default"}, b.Handlers())

	shared := MustNewBindings(Bind("text/html", "html"), Bind("application/json", "html"))
	assert.Equal(t, []string{"html"}, shared.Handlers())
}

func TestBindings_With(t *testing.T) {
	t.Parallel()

	base := MustNewBindings(Bind("text/html", "html"), Bind("*/*", "default"))

	derived, err := base.With(Bind("text/html", "fancy"), Bind("application/json", "json"))
	require.NoError(t, err)

	assert.Equal(t, []Binding{
		Bind("text/html", "fancy"),
		Bind("*/*", "default"),
		Bind("application/json", "json"),
	}, derived.Entries())

	// The base table is unchanged.
	got, ok := base.Lookup(ParseMediaType("text/html"))
	require.True(t, ok)
	assert.Equal(t, "html", got.Handler)
	assert.Equal(t, 2, base.Len())
}

func TestBindings_Nil(t *testing.T) {
	t.Parallel()

	var b *Bindings
	assert.Zero(t, b.Len())
	assert.Nil(t, b.Entries())
	assert.Nil(t, b.Priorities())
	assert.Nil(t, b.Handlers())
	_, ok := b.Lookup(Any)
	assert.False(t, ok)
}
