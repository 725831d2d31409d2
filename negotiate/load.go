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
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cast"
)

// Format identifies the encoding of a binding file.
type Format string

const (
	// FormatYAML is a YAML mapping.
	FormatYAML Format = "yaml"
	// FormatTOML is a TOML document with quoted keys.
	FormatTOML Format = "toml"
	// FormatJSON is a JSON object.
	FormatJSON Format = "json"
)

// sourceBytes names in-memory input in LoadError.
const sourceBytes = "<bytes>"

//go:embed bindings.schema.json
var schemaJSON []byte

const schemaName = "bindings.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err = compiler.AddResource(schemaName, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaName)
})

// FormatFromPath picks the format from a file extension
// (.yaml, .yml, .toml or .json).
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads a binding table from path. The format follows the file
// extension.
//
// A binding file maps patterns to values in any of three forms:
//
//	text/html: text_html                              # quality 1
//	text/plain: [0.9, text_plain]                     # quality, handler
//	text/*: {q: 0.8, handler: text_default}           # object form
//
// Entries are declared in file order (YAML, TOML and JSON alike).
func LoadFile(path string) (*Bindings, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &LoadError{Source: path, Operation: "read", Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Operation: "read", Err: err}
	}

	return decode(path, data, format)
}

// Decode parses a binding table from data. See LoadFile for the layout.
func Decode(data []byte, format Format) (*Bindings, error) {
	return decode(sourceBytes, data, format)
}

// pair is one top-level entry of a binding file, in file order.
type pair struct {
	pattern string
	value   any
}

func decode(source string, data []byte, format Format) (*Bindings, error) {
	var (
		pairs []pair
		err   error
	)

	switch format {
	case FormatYAML:
		pairs, err = decodeYAML(data)
	case FormatTOML:
		pairs, err = decodeTOML(data)
	case FormatJSON:
		pairs, err = decodeJSON(data)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, &LoadError{Source: source, Operation: "decode", Err: err}
	}

	if err = validatePairs(pairs); err != nil {
		return nil, &LoadError{Source: source, Operation: "validate", Err: err}
	}

	entries := make([]Binding, 0, len(pairs))
	for _, p := range pairs {
		e, bindErr := bindingFromValue(p.pattern, p.value)
		if bindErr != nil {
			return nil, &LoadError{Source: source, Operation: "bind", Err: bindErr}
		}
		entries = append(entries, e)
	}

	b, err := NewBindings(entries...)
	if err != nil {
		return nil, &LoadError{Source: source, Operation: "bind", Err: err}
	}

	return b, nil
}

func decodeYAML(data []byte) ([]pair, error) {
	var ms yaml.MapSlice
	if err := yaml.Unmarshal(data, &ms); err != nil {
		return nil, err
	}

	pairs := make([]pair, 0, len(ms))
	for _, item := range ms {
		key, err := cast.ToStringE(item.Key)
		if err != nil {
			return nil, fmt.Errorf("key %v: %w", item.Key, err)
		}
		pairs = append(pairs, pair{pattern: key, value: item.Value})
	}

	return pairs, nil
}

func decodeTOML(data []byte) ([]pair, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	pairs := make([]pair, 0, len(raw))
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue // nested key of an inline table
		}
		pairs = append(pairs, pair{pattern: key[0], value: raw[key[0]]})
	}

	return pairs, nil
}

func decodeJSON(data []byte) ([]pair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var pairs []pair
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var value any
		if err = dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		pairs = append(pairs, pair{pattern: key, value: value})
	}

	if _, err = dec.Token(); err != nil {
		return nil, err
	}
	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON object")
	}

	return pairs, nil
}

// validatePairs checks the decoded document against the binding schema.
// The document goes through JSON first so that every decoder's numeric
// and map types reach the validator in the same shape.
func validatePairs(pairs []pair) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	doc := make(map[string]any, len(pairs))
	for _, p := range pairs {
		doc[p.pattern] = p.value
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	return schema.Validate(inst)
}
