// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package mask

import (
	"strings"
)

// Password keeps the first and last characters of s and masks everything between,
// so 'password' becomes 'p******d'. Values shorter than three characters are fully masked.
func Password(s string) string {
	runes := []rune(s)
	if len(runes) < 3 {
		return "**"
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
