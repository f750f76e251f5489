// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"strings"

	"github.com/moov-io/sepa/pkg/convert"
	"github.com/moov-io/sepa/pkg/validator"
)

// Account is the debtor's account every transaction of a message is paid from.
type Account struct {
	Name string  `json:"name"`
	IBAN string  `json:"iban"`
	BIC  *string `json:"bic,omitempty"`
}

// Field implements validator.Record
func (a *Account) Field(name string) (*string, bool) {
	switch name {
	case "name":
		return &a.Name, true
	case "iban":
		return &a.IBAN, true
	case "bic":
		return a.BIC, true
	}
	return nil, false
}

// Normalize strips whitespace from identifiers and converts the name into the SEPA
// character set.
func (a *Account) Normalize() {
	a.Name = convert.Text(a.Name)
	a.IBAN = stripSpaces(a.IBAN)
	if a.BIC != nil {
		bic := stripSpaces(*a.BIC)
		a.BIC = &bic
	}
}

func (a *Account) Validate() error {
	if a == nil {
		return validator.Errors{{Field: "account", Message: "is missing"}}
	}
	var errs validator.Errors
	if n := length(a.Name); n < 1 || n > 70 {
		errs.Add("name", "must be 1 to 70 characters")
	}
	more, err := validator.ValidateAll(a, validator.IBAN(), validator.BIC())
	if err != nil {
		return err
	}
	errs = append(errs, more...)
	return errs.Err()
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
