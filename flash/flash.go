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
	"encoding/json"
	"iter"
	"slices"
)

// Predefined categories.
const (
	Notice  = "notice"
	Warning = "warning"
	Failure = "failure"
)

// Message is a single flash message and its category.
type Message struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// Flash holds messages grouped by category. Categories are kept in the
// order they were first used and messages in the order they were added.
//
// A Flash is not safe for concurrent use.
type Flash struct {
	order    []string
	messages map[string][]string
}

// New returns an empty Flash.
func New() *Flash {
	return &Flash{messages: make(map[string][]string)}
}

// Add appends msg to category.
func (f *Flash) Add(category, msg string) {
	if f.messages == nil {
		f.messages = make(map[string][]string)
	}
	if _, ok := f.messages[category]; !ok {
		f.order = append(f.order, category)
	}
	f.messages[category] = append(f.messages[category], msg)
}

// Success adds msg to the Notice category.
func (f *Flash) Success(msg string) {
	f.Add(Notice, msg)
}

// Warning adds msg to the Warning category.
func (f *Flash) Warning(msg string) {
	f.Add(Warning, msg)
}

// Failure adds msg to the Failure category.
func (f *Flash) Failure(msg string) {
	f.Add(Failure, msg)
}

// Messages returns a copy of the messages in category.
func (f *Flash) Messages(category string) []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.messages[category])
}

// Categories returns the categories in first-use order.
func (f *Flash) Categories() []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.order)
}

// Len returns the number of categories that hold messages.
func (f *Flash) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}

// All yields every message, category by category.
//
// Example:
//
//	for m := range f.All() {
//	    fmt.Printf("[%s] %s\n", m.Type, m.Msg)
//	}
func (f *Flash) All() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		if f == nil {
			return
		}
		for _, category := range f.order {
			for _, msg := range f.messages[category] {
				if !yield(Message{Type: category, Msg: msg}) {
					return
				}
			}
		}
	}
}

// MarshalJSON encodes the flash as an array of messages, which keeps
// category order across a round trip.
func (f *Flash) MarshalJSON() ([]byte, error) {
	msgs := make([]Message, 0)
	for m := range f.All() {
		msgs = append(msgs, m)
	}
	return json.Marshal(msgs)
}

// UnmarshalJSON decodes the array written by MarshalJSON.
func (f *Flash) UnmarshalJSON(data []byte) error {
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return err
	}

	*f = Flash{messages: make(map[string][]string)}
	for _, m := range msgs {
		f.Add(m.Type, m.Msg)
	}
	return nil
}
