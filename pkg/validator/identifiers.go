// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package validator

import (
	"regexp"
	"strings"
)

var (
	ibanRegex     = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Za-z0-9]{1,30}$`)
	bicRegex      = regexp.MustCompile(`^[A-Z]{6}[A-Z2-9][A-NP-Z0-9]([A-Z0-9]{3})?$`)
	creditorRegex = regexp.MustCompile(`^[A-Za-z]{2}[0-9]{2}[A-Za-z0-9+?/\-:().,']{3}[A-Za-z0-9+?/\-:().,']{1,28}$`)
	mandateRegex  = regexp.MustCompile(`^[A-Za-z0-9+?/\-:().,']{1,35}$`)
)

// German creditor identifiers have a fixed length.
const germanCreditorIdentifierLength = 18

// ValidIBAN reports if s is a syntactically valid IBAN. Case is not normalized, so the
// country code and check digits must already be uppercase.
func ValidIBAN(s string) bool {
	return ibanRegex.MatchString(s)
}

// ValidBIC reports if s is an 8 or 11 character BIC.
func ValidBIC(s string) bool {
	return bicRegex.MatchString(s)
}

// ValidCreditorIdentifier reports if s is a SEPA creditor identifier.
func ValidCreditorIdentifier(s string) bool {
	if !creditorRegex.MatchString(s) {
		return false
	}
	if strings.EqualFold(s[:2], "DE") {
		return len(s) == germanCreditorIdentifierLength
	}
	return true
}

// ValidMandateIdentifier reports if s is a mandate identifier of 1 to 35 allowed characters.
func ValidMandateIdentifier(s string) bool {
	return mandateRegex.MatchString(s)
}

func required(pred func(string) bool) func(*string) bool {
	return func(value *string) bool {
		if value == nil {
			return false
		}
		return pred(*value)
	}
}

// IBAN returns a Validator reading the "iban" field. A missing value is invalid.
func IBAN(opts ...Option) Validator {
	return newValidator("iban", required(ValidIBAN), opts)
}

// BIC returns a Validator reading the "bic" field. The BIC is optional, so a nil value
// is valid while an empty one is not.
func BIC(opts ...Option) Validator {
	return newValidator("bic", func(value *string) bool {
		return value == nil || ValidBIC(*value)
	}, opts)
}

// CreditorIdentifier returns a Validator reading the "creditor_identifier" field.
func CreditorIdentifier(opts ...Option) Validator {
	return newValidator("creditor_identifier", required(ValidCreditorIdentifier), opts)
}

// MandateIdentifier returns a Validator reading the "mandate_id" field.
func MandateIdentifier(opts ...Option) Validator {
	return newValidator("mandate_id", required(ValidMandateIdentifier), opts)
}
