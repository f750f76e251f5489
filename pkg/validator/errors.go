// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package validator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldError is one invalid field along with the reason it was rejected.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Errors accumulates FieldError values in the order they were found.
type Errors []FieldError

// Add records an invalid field.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Merge appends others, prefixing each field name with prefix when it's non-empty.
func (e *Errors) Merge(prefix string, others Errors) {
	for i := range others {
		field := others[i].Field
		if prefix != "" {
			field = prefix + "." + field
		}
		e.Add(field, others[i].Message)
	}
}

// Empty reports if no field errors were recorded.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// On returns the messages recorded against field.
func (e Errors) On(field string) []string {
	var out []string
	for i := range e {
		if e[i].Field == field {
			out = append(out, e[i].Message)
		}
	}
	return out
}

// Err returns nil when no errors were recorded, otherwise e itself.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	var buf strings.Builder
	for i := range e {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e[i].Error())
	}
	return buf.String()
}

// MarshalJSON encodes the errors as an object of field name to messages.
func (e Errors) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string)
	for i := range e {
		out[e[i].Field] = append(out[e[i].Field], e[i].Message)
	}
	return json.Marshal(out)
}
