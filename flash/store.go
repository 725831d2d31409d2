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

package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound is returned by Store.Load when no flash is pending.
	ErrNotFound = errors.New("flash not found")

	// ErrEmptyKey is returned for an empty session key.
	ErrEmptyKey = errors.New("empty session key")
)

// Store keeps pending flashes between requests, keyed by session.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the pending flash for key, or ErrNotFound.
	Load(ctx context.Context, key string) (*Flash, error)

	// Save replaces the pending flash for key.
	Save(ctx context.Context, key string, f *Flash) error

	// Delete removes the pending flash for key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-process Store. Flashes are stored encoded, so
// callers never share a *Flash with the store. The zero value is an
// empty store ready to use.
type MemoryStore struct {
	mu      sync.Mutex
	flashes map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flashes: make(map[string][]byte)}
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, key string) (*Flash, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.Lock()
	data, ok := s.flashes[key]
	s.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	f := New()
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("decode flash: %w", err)
	}
	return f, nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, key string, f *Flash) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrEmptyKey
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}

	s.mu.Lock()
	if s.flashes == nil {
		s.flashes = make(map[string][]byte)
	}
	s.flashes[key] = data
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.flashes, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of pending flashes.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flashes)
}
