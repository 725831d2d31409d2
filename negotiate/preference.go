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
	"errors"
	"slices"
	"strconv"
	"strings"
)

// Preference is one media type the client accepts, with its quality.
type Preference struct {
	MediaType MediaType
	Quality   float64
}

// String formats the preference the way it would appear in an Accept header.
// The q parameter is omitted when it is 1.
func (p Preference) String() string {
	if p.Quality == 1 {
		return p.MediaType.String()
	}
	return p.MediaType.String() + ";q=" + strconv.FormatFloat(p.Quality, 'g', -1, 64)
}

// Preferences is a parsed Accept header, most preferred first.
type Preferences []Preference

// String re-assembles the preferences into an Accept header value.
func (p Preferences) String() string {
	parts := make([]string, len(p))
	for i, pref := range p {
		parts[i] = pref.String()
	}
	return strings.Join(parts, ", ")
}

// fallbackPreferences is used when a header yields no usable segment.
func fallbackPreferences() Preferences {
	return Preferences{{MediaType: Any, Quality: 1}}
}

// ParsePreferences parses an Accept header into an ordered preference list.
//
// Each comma-separated segment is a media type optionally followed by
// ";"-separated parameters; only q is interpreted and it defaults to 1.
// Segments with a q outside [0, 1] are dropped. If nothing usable
// remains, including for an empty header, the result is */* with
// quality 1.
//
// Ordering: */* always comes last, higher quality comes first and equal
// qualities keep their header order. A family wildcard such as text/*
// never ranks above an exact text/... entry of the same header.
//
// A segment whose q is not a number, or whose media range has no slash
// (such as "text"), is dropped as well and reported through the returned
// error, which matches ErrMalformedPreference.
// The returned list is valid even when the error is not nil.
//
// Examples:
//
//	prefs, _ := ParsePreferences("text/plain, text/html;q=0.5, text/*")
//	// text/plain, text/html;q=0.5, text/*
//
//	prefs, _ = ParsePreferences("")
//	// */*
func ParsePreferences(header string) (Preferences, error) {
	var (
		prefs Preferences
		errs  []error
	)

	for segment := range strings.SplitSeq(header, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		pref, err := parseSegment(segment)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		// NaN fails both comparisons and is dropped with the rest.
		if !(pref.Quality >= 0 && pref.Quality <= 1) || pref.MediaType.IsZero() {
			continue
		}
		prefs = append(prefs, pref)
	}

	if len(prefs) == 0 {
		return fallbackPreferences(), errors.Join(errs...)
	}

	sortPreferences(prefs)

	return prefs, errors.Join(errs...)
}

// parseSegment parses a single Accept segment (between commas).
func parseSegment(segment string) (Preference, error) {
	pieces := strings.Split(segment, ";")

	if mediaRange := strings.TrimSpace(pieces[0]); mediaRange != "" && !strings.Contains(mediaRange, "/") {
		return Preference{}, &MalformedPreferenceError{
			Segment: segment,
			Value:   mediaRange,
			Err:     errNoSubtype,
		}
	}

	pref := Preference{
		MediaType: ParseMediaType(pieces[0]),
		Quality:   1,
	}

	for _, param := range pieces[1:] {
		value, ok := strings.CutPrefix(strings.TrimSpace(param), "q=")
		if !ok {
			continue
		}

		value = strings.TrimSpace(value)
		q, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Preference{}, &MalformedPreferenceError{
				Segment: segment,
				Value:   value,
				Err:     err,
			}
		}
		pref.Quality = q

		break
	}

	return pref, nil
}

// sortPreferences orders prefs in place by the request-side rule.
// The sort key is (is */*, -effective quality, is family wildcard) with
// header order breaking the remaining ties. The effective quality of a
// family wildcard is capped at the lowest quality of the exact types of
// its family, which keeps text/* behind text/html;q=0.5.
func sortPreferences(prefs Preferences) {
	floor := make(map[string]float64, len(prefs))
	for _, p := range prefs {
		if p.MediaType.Subtype == Wildcard {
			continue
		}
		if q, ok := floor[p.MediaType.Type]; !ok || p.Quality < q {
			floor[p.MediaType.Type] = p.Quality
		}
	}

	effective := func(p Preference) float64 {
		if p.MediaType.IsFamilyWildcard() {
			if q, ok := floor[p.MediaType.Type]; ok {
				return min(p.Quality, q)
			}
		}
		return p.Quality
	}

	slices.SortStableFunc(prefs, func(a, b Preference) int {
		if c := compareBool(a.MediaType.IsFullWildcard(), b.MediaType.IsFullWildcard()); c != 0 {
			return c
		}
		if c := cmp.Compare(effective(b), effective(a)); c != 0 {
			return c
		}
		return compareBool(a.MediaType.IsFamilyWildcard(), b.MediaType.IsFamilyWildcard())
	})
}

// compareBool orders false before true.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
