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
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// Binding ties a media type pattern to a handler identifier.
type Binding struct {
	Pattern MediaType
	Quality float64
	Handler string
}

// Bind binds pattern to handler with quality 1.
//
// Example:
//
//	negotiate.Bind("text/html", "html")
func Bind(pattern, handler string) Binding {
	return BindQ(pattern, 1, handler)
}

// BindQ binds pattern to handler with an explicit quality. The quality
// only matters when a request asks for a whole family (text/*) or for
// anything (*/*) and several bindings could serve it.
//
// Example:
//
//	negotiate.BindQ("text/plain", 0.9, "plain")
func BindQ(pattern string, quality float64, handler string) Binding {
	return Binding{
		Pattern: ParseMediaType(pattern),
		Quality: quality,
		Handler: handler,
	}
}

func (b Binding) validate() error {
	if b.Pattern.IsZero() || b.Pattern.Subtype == "" {
		return fmt.Errorf("%w: empty media type pattern", ErrInvalidBinding)
	}
	if b.Handler == "" {
		return fmt.Errorf("%w: %s: empty handler", ErrInvalidBinding, b.Pattern)
	}
	if !(b.Quality >= 0 && b.Quality <= 1) {
		return fmt.Errorf("%w: %s: quality %v outside [0, 1]", ErrInvalidBinding, b.Pattern, b.Quality)
	}
	return nil
}

// Bindings is the immutable binding table of a view. It is safe to share
// between goroutines; the provider priority list is computed on first use
// and cached.
type Bindings struct {
	entries []Binding
	index   map[MediaType]int

	once       sync.Once
	priorities []Binding
}

// NewBindings builds a binding table. Declaration order is kept and is
// the final tie-break of the provider ordering. When a pattern is
// declared twice the later declaration replaces the earlier one in place.
//
// Example:
//
//	b, err := negotiate.NewBindings(
//	    negotiate.BindQ("text/plain", 0.9, "text_plain"),
//	    negotiate.Bind("text/html", "text_html"),
//	    negotiate.Bind("text/*", "text_default"),
//	    negotiate.Bind("*/*", "default"),
//	)
func NewBindings(entries ...Binding) (*Bindings, error) {
	b := &Bindings{
		entries: make([]Binding, 0, len(entries)),
		index:   make(map[MediaType]int, len(entries)),
	}

	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if i, ok := b.index[e.Pattern]; ok {
			b.entries[i] = e
			continue
		}
		b.index[e.Pattern] = len(b.entries)
		b.entries = append(b.entries, e)
	}

	return b, nil
}

// MustNewBindings is like NewBindings but panics on error.
// Intended for package-level binding tables.
func MustNewBindings(entries ...Binding) *Bindings {
	b, err := NewBindings(entries...)
	if err != nil {
		panic("negotiate: " + err.Error())
	}
	return b
}

// BindingsFromMap builds a binding table from a map of pattern to value.
// A value is either a handler identifier, a two element {quality, handler}
// slice or array, a map with "q" and "handler" keys, or a Binding.
// Go maps are unordered, so entries are declared in pattern order.
//
// Example:
//
//	b, err := negotiate.BindingsFromMap(map[string]any{
//	    "text/plain": []any{0.9, "text_plain"},
//	    "text/html":  "text_html",
//	    "*/*":        "default",
//	})
func BindingsFromMap(m map[string]any) (*Bindings, error) {
	patterns := make([]string, 0, len(m))
	for pattern := range m {
		patterns = append(patterns, pattern)
	}
	slices.Sort(patterns)

	entries := make([]Binding, 0, len(m))
	for _, pattern := range patterns {
		e, err := bindingFromValue(pattern, m[pattern])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return NewBindings(entries...)
}

// bindingValue is the object form of a binding value.
type bindingValue struct {
	Q       *float64 `mapstructure:"q"`
	Handler string   `mapstructure:"handler"`
}

// bindingFromValue converts one loosely typed table value into a Binding.
func bindingFromValue(pattern string, v any) (Binding, error) {
	switch val := v.(type) {
	case string:
		return Bind(pattern, val), nil

	case Binding:
		val.Pattern = ParseMediaType(pattern)
		return val, nil

	case [2]any:
		return bindingFromPair(pattern, val[0], val[1])

	case []any:
		if len(val) != 2 {
			return Binding{}, fmt.Errorf("%w: %s: expected [quality, handler], got %d elements",
				ErrInvalidBinding, pattern, len(val))
		}
		return bindingFromPair(pattern, val[0], val[1])

	case map[string]any:
		var out bindingValue
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &out,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return Binding{}, err
		}
		if err := dec.Decode(val); err != nil {
			return Binding{}, fmt.Errorf("%w: %s: %w", ErrInvalidBinding, pattern, err)
		}
		q := 1.0
		if out.Q != nil {
			q = *out.Q
		}
		return BindQ(pattern, q, out.Handler), nil

	default:
		return Binding{}, fmt.Errorf("%w: %s: unsupported value of type %T", ErrInvalidBinding, pattern, v)
	}
}

func bindingFromPair(pattern string, quality, handler any) (Binding, error) {
	q, err := cast.ToFloat64E(quality)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %s: quality: %w", ErrInvalidBinding, pattern, err)
	}
	id, err := cast.ToStringE(handler)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %s: handler: %w", ErrInvalidBinding, pattern, err)
	}
	return BindQ(pattern, q, id), nil
}

// Len returns the number of bindings.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Entries returns the bindings in declaration order.
func (b *Bindings) Entries() []Binding {
	if b == nil {
		return nil
	}
	return slices.Clone(b.entries)
}

// Lookup returns the binding declared for exactly pattern.
func (b *Bindings) Lookup(pattern MediaType) (Binding, bool) {
	if b == nil {
		return Binding{}, false
	}
	i, ok := b.index[pattern]
	if !ok {
		return Binding{}, false
	}
	return b.entries[i], true
}

// Handlers returns the distinct handler identifiers in declaration order.
func (b *Bindings) Handlers() []string {
	if b == nil {
		return nil
	}
	ids := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		if !slices.Contains(ids, e.Handler) {
			ids = append(ids, e.Handler)
		}
	}
	return ids
}

// With returns a new table holding b's bindings overridden and extended
// by entries. b itself is not modified. This is how a view derives its
// table from a shared base table.
func (b *Bindings) With(entries ...Binding) (*Bindings, error) {
	return NewBindings(append(b.Entries(), entries...)...)
}

// Priorities returns the provider priority list: exact patterns before
// family wildcards, */* last, higher quality first and declaration order
// for ties. The list is computed once and the same slice is returned on
// every call; callers must not modify it.
func (b *Bindings) Priorities() []Binding {
	if b == nil {
		return nil
	}

	b.once.Do(func() {
		sorted := slices.Clone(b.entries)
		slices.SortStableFunc(sorted, func(x, y Binding) int {
			if c := compareBool(x.Pattern.IsFullWildcard(), y.Pattern.IsFullWildcard()); c != 0 {
				return c
			}
			if c := compareBool(x.Pattern.IsFamilyWildcard(), y.Pattern.IsFamilyWildcard()); c != 0 {
				return c
			}
			return cmp.Compare(y.Quality, x.Quality)
		})
		b.priorities = sorted
	})

	return b.priorities
}
