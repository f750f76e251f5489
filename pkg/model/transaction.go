// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/moov-io/sepa/pkg/convert"
	"github.com/moov-io/sepa/pkg/validator"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	// DefaultCurrency is used when a transaction has no currency.
	DefaultCurrency = "EUR"

	// DefaultBatchBooking is used when a request doesn't specify batch booking.
	DefaultBatchBooking = true

	// ServiceLevelSEPA and ServiceLevelURGP are the accepted service level codes.
	ServiceLevelSEPA = "SEPA"
	ServiceLevelURGP = "URGP"

	// NotProvided fills identifiers the caller didn't supply.
	NotProvided = "NOTPROVIDED"
)

var (
	// DefaultRequestedDate asks the bank to execute as soon as possible.
	DefaultRequestedDate = civil.Date{Year: 1999, Month: time.January, Day: 1}

	// MaxAmount is the largest amount a single transaction can carry.
	MaxAmount = decimal.RequireFromString("999999999.99")

	currencyRegex    = regexp.MustCompile(`^[A-Z]{3}$`)
	countryCodeRegex = regexp.MustCompile(`^[A-Z]{2}$`)
)

// Transaction is one credit transfer to a creditor.
type Transaction struct {
	Name     string          `json:"name"`
	IBAN     string          `json:"iban"`
	BIC      *string         `json:"bic,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`

	// Reference is the end-to-end identification passed along to the creditor.
	Reference string `json:"reference"`

	// Instruction is an identification for the debtor's bank only.
	Instruction *string `json:"instruction,omitempty"`

	RequestedDate         civil.Date `json:"requestedDate"`
	BatchBooking          bool       `json:"batchBooking"`
	ServiceLevel          *string    `json:"serviceLevel,omitempty"`
	CategoryPurpose       *string    `json:"categoryPurpose,omitempty"`
	RemittanceInformation *string    `json:"remittanceInformation,omitempty"`
	CreditorAddress       *Address   `json:"creditorAddress,omitempty"`
}

// Field implements validator.Record
func (t *Transaction) Field(name string) (*string, bool) {
	switch name {
	case "name":
		return &t.Name, true
	case "iban":
		return &t.IBAN, true
	case "bic":
		return t.BIC, true
	case "currency":
		return &t.Currency, true
	case "reference":
		return &t.Reference, true
	case "instruction":
		return t.Instruction, true
	case "service_level":
		return t.ServiceLevel, true
	case "category_purpose":
		return t.CategoryPurpose, true
	case "remittance_information":
		return t.RemittanceInformation, true
	}
	return nil, false
}

// SetDefaults fills in the currency, reference, service level and requested date
// when they're missing. SEPA is only implied for EUR transfers.
func (t *Transaction) SetDefaults() {
	if t.Currency == "" {
		t.Currency = DefaultCurrency
	}
	if t.Reference == "" {
		t.Reference = NotProvided
	}
	if t.ServiceLevel == nil && t.Currency == DefaultCurrency {
		t.ServiceLevel = String(ServiceLevelSEPA)
	}
	if t.RequestedDate == (civil.Date{}) {
		t.RequestedDate = DefaultRequestedDate
	}
}

// Normalize strips whitespace from identifiers and converts text fields into the SEPA
// character set.
func (t *Transaction) Normalize() {
	t.Name = convert.Text(t.Name)
	t.IBAN = stripSpaces(t.IBAN)
	if t.BIC != nil {
		bic := stripSpaces(*t.BIC)
		t.BIC = &bic
	}
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	t.Reference = convert.Text(t.Reference)
	t.Instruction = convert.Pointer(t.Instruction)
	t.RemittanceInformation = convert.Pointer(t.RemittanceInformation)
	t.CreditorAddress.Normalize()
}

// Validate checks every field against today's date in the local timezone.
func (t *Transaction) Validate() error {
	return t.ValidateOn(civil.DateOf(time.Now()))
}

// ValidateOn checks every field and returns validator.Errors listing each invalid one.
// A requested date before today is rejected unless it's DefaultRequestedDate.
func (t *Transaction) ValidateOn(today civil.Date) error {
	var errs validator.Errors
	if n := length(t.Name); n < 1 || n > 70 {
		errs.Add("name", "must be 1 to 70 characters")
	}
	more, err := validator.ValidateAll(t, validator.IBAN(), validator.BIC())
	if err != nil {
		return err
	}
	errs = append(errs, more...)

	if !t.Amount.IsPositive() {
		errs.Add("amount", "must be greater than 0")
	} else if t.Amount.GreaterThan(MaxAmount) {
		errs.Add("amount", "must be less than or equal to "+MaxAmount.StringFixed(2))
	}
	if !validCurrency(t.Currency) {
		errs.Add("currency", "is not an ISO 4217 code")
	}
	if n := length(t.Reference); n < 1 || n > 35 {
		errs.Add("reference", "must be 1 to 35 characters")
	}
	if t.Instruction != nil && length(*t.Instruction) > 35 {
		errs.Add("instruction", "must be at most 35 characters")
	}
	if t.RemittanceInformation != nil && length(*t.RemittanceInformation) > 140 {
		errs.Add("remittance_information", "must be at most 140 characters")
	}
	if t.ServiceLevel != nil {
		if lvl := *t.ServiceLevel; lvl != ServiceLevelSEPA && lvl != ServiceLevelURGP {
			errs.Add("service_level", "must be SEPA or URGP")
		}
	}
	if t.CategoryPurpose != nil {
		if n := length(*t.CategoryPurpose); n < 1 || n > 4 {
			errs.Add("category_purpose", "must be 1 to 4 characters")
		}
	}
	if !t.RequestedDate.IsValid() {
		errs.Add("requested_date", validator.DefaultMessage)
	} else if t.RequestedDate != DefaultRequestedDate && t.RequestedDate.Before(today) {
		errs.Add("requested_date", "is in the past")
	}
	if err := t.CreditorAddress.Validate(); err != nil {
		if addrErrs, ok := err.(validator.Errors); ok {
			errs.Merge("creditor_address", addrErrs)
		}
	}
	return errs.Err()
}

func validCurrency(code string) bool {
	if !currencyRegex.MatchString(code) {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}
