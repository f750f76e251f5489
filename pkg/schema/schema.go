// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package schema describes the pain.001 (customer credit transfer initiation)
// schema versions documents can be rendered for.
package schema

import (
	"errors"
	"fmt"
	"sort"
)

// Name identifies a pain.001 schema version.
type Name string

const (
	Pain00100103     Name = "pain.001.001.03"
	Pain00100203     Name = "pain.001.002.03"
	Pain00100303     Name = "pain.001.003.03"
	Pain00100103CH02 Name = "pain.001.001.03.ch.02"

	// Default is used when no schema was chosen.
	Default = Pain00100103
)

// RootTag is the element every pain.001 version places below Document.
const RootTag = "CstmrCdtTrfInitn"

const XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

var (
	ErrUnknown      = errors.New("unknown schema")
	ErrIncompatible = errors.New("incompatible with schema")
)

// Rules restrict which accounts and transactions a schema version accepts.
type Rules struct {
	// DebtorBIC requires the debtor account to carry a BIC.
	DebtorBIC bool

	// CreditorBIC requires every transaction to carry a BIC.
	CreditorBIC bool

	// Currency, when set, is the only currency transactions may use.
	Currency string

	// ServiceLevel, when set, is required on every transaction.
	ServiceLevel string

	// SEPAOnly allows a service level only when it's SEPA in EUR.
	SEPAOnly bool
}

// Descriptor is everything needed to render and check a document for one schema.
type Descriptor struct {
	Name           Name
	Namespace      string
	SchemaLocation string
	RootTag        string
	Rules          Rules
}

func isoNamespace(name Name) string {
	return fmt.Sprintf("urn:iso:std:iso:20022:tech:xsd:%s", name)
}

func descriptor(name Name, namespace string, rules Rules) Descriptor {
	return Descriptor{
		Name:           name,
		Namespace:      namespace,
		SchemaLocation: fmt.Sprintf("%s %s.xsd", namespace, name),
		RootTag:        RootTag,
		Rules:          rules,
	}
}

var known = map[Name]Descriptor{
	Pain00100103: descriptor(Pain00100103, isoNamespace(Pain00100103), Rules{
		SEPAOnly: true,
	}),
	Pain00100203: descriptor(Pain00100203, isoNamespace(Pain00100203), Rules{
		DebtorBIC:    true,
		CreditorBIC:  true,
		Currency:     "EUR",
		ServiceLevel: "SEPA",
	}),
	Pain00100303: descriptor(Pain00100303, isoNamespace(Pain00100303), Rules{
		Currency: "EUR",
	}),
	Pain00100103CH02: descriptor(Pain00100103CH02, "http://www.six-interbank-clearing.com/de/pain.001.001.03.ch.02.xsd", Rules{
		DebtorBIC: true,
	}),
}

// Lookup returns the descriptor of a known schema. An empty name selects Default.
func Lookup(name string) (Descriptor, error) {
	if name == "" {
		name = string(Default)
	}
	d, ok := known[Name(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return d, nil
}

// Known lists every supported schema ordered by name.
func Known() []Descriptor {
	out := make([]Descriptor, 0, len(known))
	for _, d := range known {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func (d Descriptor) String() string {
	return string(d.Name)
}

// CheckAccount returns an ErrIncompatible error if the debtor account can't be used.
func (d Descriptor) CheckAccount(hasBIC bool) error {
	if d.Rules.DebtorBIC && !hasBIC {
		return fmt.Errorf("%w %s: debtor BIC is required", ErrIncompatible, d.Name)
	}
	return nil
}

// CheckTransaction returns an ErrIncompatible error if a transaction with the given
// currency, service level ("" when absent) and BIC presence can't be used.
func (d Descriptor) CheckTransaction(currency, serviceLevel string, hasBIC bool) error {
	r := d.Rules
	if r.CreditorBIC && !hasBIC {
		return fmt.Errorf("%w %s: creditor BIC is required", ErrIncompatible, d.Name)
	}
	if r.Currency != "" && currency != r.Currency {
		return fmt.Errorf("%w %s: currency %s is not allowed", ErrIncompatible, d.Name, currency)
	}
	if r.ServiceLevel != "" && serviceLevel != r.ServiceLevel {
		return fmt.Errorf("%w %s: service level %s is required", ErrIncompatible, d.Name, r.ServiceLevel)
	}
	if r.SEPAOnly && serviceLevel != "" && (serviceLevel != "SEPA" || currency != "EUR") {
		return fmt.Errorf("%w %s: service level %s with currency %s", ErrIncompatible, d.Name, serviceLevel, currency)
	}
	return nil
}
