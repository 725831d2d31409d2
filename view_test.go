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

package views

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/views/negotiate"
	"rivaas.dev/views/problem"
)

type greetingView struct {
	name string
}

func (v *greetingView) Serve(w http.ResponseWriter, _ *http.Request) error {
	_, err := fmt.Fprintf(w, "hello %s", v.name)
	return err
}

// shoutingView upper-cases its own output before it is sent.
type shoutingView struct {
	greetingView
}

func (v *shoutingView) After(resp *Response) error {
	upper := strings.ToUpper(resp.Body.String())
	resp.Body.Reset()
	resp.Body.WriteString(upper)
	resp.Header().Set("X-Shouted", "true")
	resp.Status = http.StatusAccepted
	return nil
}

type failingFinisher struct {
	greetingView
}

func (*failingFinisher) After(*Response) error {
	return problem.WithStatus(errors.New("refused"), http.StatusForbidden)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	var built atomic.Int32
	h := Create(func(r *http.Request) (View, error) {
		built.Add(1)
		return &greetingView{name: r.URL.Query().Get("name")}, nil
	}, WithoutLogging())

	for _, name := range []string{"ada", "grace"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?name="+name, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello "+name, rec.Body.String())
	}

	// One view per request.
	assert.Equal(t, int32(2), built.Load())
}

func TestCreate_Finisher(t *testing.T) {
	t.Parallel()

	h := Create(func(*http.Request) (View, error) {
		return &shoutingView{greetingView{name: "ada"}}, nil
	}, WithoutLogging())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "HELLO ADA", rec.Body.String())
	assert.Equal(t, "true", rec.Header().Get("X-Shouted"))
}

func TestCreate_FinisherError(t *testing.T) {
	t.Parallel()

	h := Create(func(*http.Request) (View, error) {
		return &failingFinisher{greetingView{name: "ada"}}, nil
	}, WithoutLogging(), WithErrorFormatter(problem.NewSimple()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Buffered output is discarded when After fails.
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"refused"}`, rec.Body.String())
}

func TestCreate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		factory    Factory
		wantStatus int
		wantDetail string
	}{
		{
			name:       "nil factory",
			factory:    nil,
			wantStatus: http.StatusInternalServerError,
			wantDetail: ErrMisconfiguredView.Error(),
		},
		{
			name: "factory error",
			factory: func(*http.Request) (View, error) {
				return nil, problem.WithStatus(errors.New("no such article"), http.StatusNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantDetail: "no such article",
		},
		{
			name: "nil view",
			factory: func(*http.Request) (View, error) {
				return nil, nil
			},
			wantStatus: http.StatusInternalServerError,
			wantDetail: ErrNilView.Error(),
		},
		{
			name: "view error",
			factory: func(*http.Request) (View, error) {
				return ViewFunc(func(http.ResponseWriter, *http.Request) error {
					return errors.New("database down")
				}), nil
			},
			wantStatus: http.StatusInternalServerError,
			wantDetail: "database down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			Create(tt.factory, WithoutLogging()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDetail, body["detail"])
		})
	}
}

func TestCreate_ViewErrorAfterWrite(t *testing.T) {
	t.Parallel()

	h := Create(func(*http.Request) (View, error) {
		return ViewFunc(func(w http.ResponseWriter, _ *http.Request) error {
			w.WriteHeader(http.StatusAccepted)
			_, _ = io.WriteString(w, "queued")
			return errors.New("late failure")
		}), nil
	}, WithoutLogging())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "queued", rec.Body.String())
}

func TestCreate_Negotiator(t *testing.T) {
	t.Parallel()

	n := MustNewNegotiator(
		negotiate.MustNewBindings(
			negotiate.Bind("text/html", "html"),
			negotiate.Bind("application/json", "json"),
		),
		echoHandlers("html", "json"),
		WithoutLogging(),
	)

	h := Create(func(*http.Request) (View, error) { return n, nil }, WithoutLogging())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "json", rec.Body.String())

	req.Header.Set("Accept", "image/png")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestCreate_AbstractBase(t *testing.T) {
	t.Parallel()

	// A view that dispatches through a negotiator it never configured.
	h := Create(func(*http.Request) (View, error) {
		return &Negotiator{}, nil
	}, WithoutLogging())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrMisconfiguredView.Error())
}

func TestResponse(t *testing.T) {
	t.Parallel()

	var resp Response
	resp.Header().Set("Content-Type", "text/plain")
	resp.WriteHeader(http.StatusCreated)
	resp.WriteHeader(http.StatusTeapot)
	_, err := io.WriteString(&resp, "body")
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)

	rec := httptest.NewRecorder()
	require.NoError(t, resp.flush(rec))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "body", rec.Body.String())
}

func TestResponse_DefaultStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, newResponse().flush(rec))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
