// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"strings"
)

// String returns a pointer to s for populating optional fields.
func String(s string) *string {
	return &s
}

// Present reports if an optional field holds a non-blank value. Only present
// values are rendered into documents.
func Present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// Value returns the optional field's value or an empty string.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func length(s string) int {
	return len([]rune(s))
}
