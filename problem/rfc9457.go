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

package problem

import (
	"encoding/json"
	"net/http"
)

// RFC9457 formats errors as RFC 9457 problem details
// (application/problem+json).
type RFC9457 struct {
	// BaseURL is joined with the error code to build the problem type URI.
	// Without a base URL the bare code is used; without a code the type is
	// "about:blank".
	BaseURL string

	// StatusResolver overrides the status lookup when set.
	StatusResolver func(err error) int
}

// NewRFC9457 returns an RFC9457 formatter using baseURL for problem types.
func NewRFC9457(baseURL string) *RFC9457 {
	return &RFC9457{BaseURL: baseURL}
}

// Detail is an RFC 9457 problem detail object.
type Detail struct {
	Type       string
	Title      string
	Status     int
	Detail     string
	Instance   string
	Extensions map[string]any
}

// MarshalJSON writes the extensions inline next to the standard members.
// Extensions cannot shadow a standard member.
func (p Detail) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 5+len(p.Extensions))
	for k, v := range p.Extensions {
		m[k] = v
	}

	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	} else {
		delete(m, "detail")
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	} else {
		delete(m, "instance")
	}

	return json.Marshal(m)
}

// Format implements Formatter.
func (f *RFC9457) Format(req *http.Request, err error) Response {
	status := StatusOf(err)
	if f.StatusResolver != nil {
		status = f.StatusResolver(err)
	}

	p := Detail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
	}
	if req != nil && req.URL != nil {
		p.Instance = req.URL.Path
	}

	if code := CodeOf(err); code != "" {
		p.Type = code
		if f.BaseURL != "" {
			p.Type = f.BaseURL + "/" + code
		}
		p.Extensions = map[string]any{"code": code}
	}

	return Response{
		Status:      status,
		ContentType: "application/problem+json; charset=utf-8",
		Body:        p,
	}
}
