// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package validator checks the structured identifiers carried by SEPA payment
// documents: IBAN, BIC, SEPA creditor identifier and mandate identifier.
//
// The checks are purely syntactic. No checksum (mod-97) verification is performed.
package validator

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a Record has no field with the name a Validator
// was configured to read.
var ErrUnknownField = errors.New("unknown field")

// DefaultMessage is the reason recorded for an invalid field unless overridden.
const DefaultMessage = "is invalid"

// Record exposes named fields to validators. ok is false when the record has no
// such field, which is different from a field that exists but holds no value (nil).
type Record interface {
	Field(name string) (value *string, ok bool)
}

// Validator checks one field of a Record and appends a FieldError to errs when the
// value is invalid. An error is returned only when the field can't be read at all.
type Validator interface {
	Validate(rec Record, errs *Errors) error
}

// Fields is a Record backed by a map. Missing keys are unknown fields.
type Fields map[string]*string

func (f Fields) Field(name string) (*string, bool) {
	v, ok := f[name]
	return v, ok
}

// Option customizes a Validator created by this package.
type Option func(*options)

type options struct {
	field   string
	message string
}

// FieldName overrides the record field the Validator reads.
func FieldName(name string) Option {
	return func(o *options) {
		o.field = name
	}
}

// Message overrides the reason recorded for an invalid value.
func Message(msg string) Option {
	return func(o *options) {
		o.message = msg
	}
}

type fieldValidator struct {
	options
	valid func(value *string) bool
}

func newValidator(field string, valid func(*string) bool, opts []Option) *fieldValidator {
	v := &fieldValidator{
		options: options{field: field, message: DefaultMessage},
		valid:   valid,
	}
	for i := range opts {
		opts[i](&v.options)
	}
	return v
}

func (v *fieldValidator) Validate(rec Record, errs *Errors) error {
	if rec == nil {
		return fmt.Errorf("%w: %s (nil record)", ErrUnknownField, v.field)
	}
	value, ok := rec.Field(v.field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, v.field)
	}
	if !v.valid(value) {
		errs.Add(v.field, v.message)
	}
	return nil
}

// ValidateAll runs every validator against rec and returns the accumulated field errors.
// Validation doesn't stop on the first invalid field, only on an unknown one.
func ValidateAll(rec Record, validators ...Validator) (Errors, error) {
	var errs Errors
	for i := range validators {
		if err := validators[i].Validate(rec, &errs); err != nil {
			return errs, err
		}
	}
	return errs, nil
}
