// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package convert rewrites free text into the character set SEPA payment
// schemes accept for names, references and remittance information.
package convert

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	replacer = strings.NewReplacer("€", "E", "@", "(at)", "_", "-")
	newlines = regexp.MustCompile(`[\r\n]+`)
)

// German umlauts and sharp s are accepted by the schemes as-is.
var extended = map[rune]bool{
	'Ä': true, 'Ö': true, 'Ü': true,
	'ä': true, 'ö': true, 'ü': true,
	'ß': true,
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case strings.ContainsRune(" &*$%':?,-(+.)/", r):
		return true
	}
	return extended[r]
}

// Text converts s following the EPC best practices for the extended character set:
// a few symbols are replaced, line breaks become spaces, accented letters lose their
// marks and anything else outside the allowed set is dropped.
func Text(s string) string {
	s = replacer.Replace(s)
	s = newlines.ReplaceAllString(s, " ")

	var buf strings.Builder
	for _, r := range s {
		if allowed(r) {
			buf.WriteRune(r)
			continue
		}
		for _, b := range stripMarks(r) {
			if allowed(b) {
				buf.WriteRune(b)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// stripMarks decomposes r and removes combining marks, so 'é' becomes 'e'.
func stripMarks(r rune) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, string(r))
	if err != nil {
		return ""
	}
	return out
}

// Pointer applies Text to an optional value. nil stays nil.
func Pointer(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
