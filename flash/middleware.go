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
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type contextKey struct{}

// session is the per-request flash state stored in the request context.
type session struct {
	key   string
	flash *Flash
	store Store
	cfg   *config
}

// Option configures Middleware.
type Option func(*config)

// config holds the configuration for the flash middleware.
type config struct {
	// cookieName is the cookie carrying the session key
	cookieName string

	// cookiePath scopes the session cookie
	cookiePath string

	// secure marks the session cookie Secure
	secure bool

	// generator mints new session keys
	generator func() string

	// logger receives store failures; nil disables logging
	logger *slog.Logger
}

// defaultConfig returns the default configuration for the flash middleware.
func defaultConfig() *config {
	return &config{
		cookieName: "flash_session",
		cookiePath: "/",
		generator:  generateUUIDv7,
		logger:     slog.Default(),
	}
}

// generateUUIDv7 generates a UUID v7 session key.
func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

// generateULID generates a ULID session key.
func generateULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// WithCookieName sets the name of the session cookie.
// Default: "flash_session"
func WithCookieName(name string) Option {
	return func(cfg *config) {
		cfg.cookieName = name
	}
}

// WithCookiePath sets the Path of the session cookie.
// Default: "/"
func WithCookiePath(path string) Option {
	return func(cfg *config) {
		cfg.cookiePath = path
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(cfg *config) {
		cfg.secure = secure
	}
}

// WithULID mints session keys as ULIDs instead of UUID v7.
func WithULID() Option {
	return func(cfg *config) {
		cfg.generator = generateULID
	}
}

// WithGenerator sets a custom session key generator.
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		cfg.generator = generator
	}
}

// WithLogger sets the logger for store failures.
// By default slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithoutLogging disables logging.
func WithoutLogging() Option {
	return func(cfg *config) {
		cfg.logger = nil
	}
}

// Middleware attaches a fresh Flash to every request and, once the handler
// returns, saves it to store if it holds any messages. The flash is then
// available to the next request of the same client through Pop.
//
// Clients are told apart by a session cookie, issued on first use.
// Store failures are logged and never reach the client.
//
// Example:
//
//	store := flash.NewMemoryStore()
//	handler := flash.Middleware(store)(mux)
//
//	// In a form handler:
//	flash.FromContext(r.Context()).Success("Article saved.")
//	http.Redirect(w, r, "/articles", http.StatusSeeOther)
//
//	// In the page rendered after the redirect:
//	for m := range flash.Pop(r).All() { ... }
func Middleware(store Store, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.sessionKey(w, r)

			s := &session{
				key:   key,
				flash: New(),
				store: store,
				cfg:   cfg,
			}
			r = r.WithContext(context.WithValue(r.Context(), contextKey{}, s))

			next.ServeHTTP(w, r)

			if s.flash.Len() == 0 {
				return
			}
			if err := store.Save(r.Context(), key, s.flash); err != nil {
				cfg.log(r.Context(), slog.LevelError, "failed to save flash", "error", err)
			}
		})
	}
}

// sessionKey returns the session key from the request cookie, issuing a
// new cookie when there is none.
func (cfg *config) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cfg.cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	key := cfg.generator()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.cookieName,
		Value:    key,
		Path:     cfg.cookiePath,
		HttpOnly: true,
		Secure:   cfg.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}

func (cfg *config) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if cfg.logger == nil {
		return
	}
	cfg.logger.Log(ctx, level, msg, args...)
}

// FromContext returns the flash being collected for the current request.
// It returns nil when Middleware is not installed.
func FromContext(ctx context.Context) *Flash {
	if s, ok := ctx.Value(contextKey{}).(*session); ok {
		return s.flash
	}
	return nil
}

// Pop returns the flash left by a previous request of this client and
// removes it from the store. It returns nil when nothing is pending or
// Middleware is not installed.
func Pop(r *http.Request) *Flash {
	s, ok := r.Context().Value(contextKey{}).(*session)
	if !ok {
		return nil
	}

	ctx := r.Context()
	f, err := s.store.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.cfg.log(ctx, slog.LevelError, "failed to load flash", "error", err)
		}
		return nil
	}

	if err := s.store.Delete(ctx, s.key); err != nil {
		s.cfg.log(ctx, slog.LevelError, "failed to delete flash", "error", err)
	}
	return f
}
