// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package mask

import (
	"testing"
)

func TestPassword(t *testing.T) {
	cases := map[string]string{
		"":         "**",
		"ab":       "**",
		"abc":      "a*c",
		"password": "p******d",
		"geheimnis": "g*******s",
		"schlüssel": "s*******l",
	}
	for in, expected := range cases {
		if got := Password(in); got != expected {
			t.Errorf("Password(%q)=%q expected %q", in, got, expected)
		}
	}
}
