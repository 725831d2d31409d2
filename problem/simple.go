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

import "net/http"

// Simple formats errors as {"error": "...", "code": "..."}.
type Simple struct{}

// NewSimple returns a Simple formatter.
func NewSimple() *Simple {
	return &Simple{}
}

// Format implements Formatter.
func (*Simple) Format(_ *http.Request, err error) Response {
	body := map[string]any{
		"error": err.Error(),
	}
	if code := CodeOf(err); code != "" {
		body["code"] = code
	}

	return Response{
		Status:      StatusOf(err),
		ContentType: "application/json; charset=utf-8",
		Body:        body,
	}
}
