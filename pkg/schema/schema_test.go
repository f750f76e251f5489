// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package schema

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	d, err := Lookup("")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != Default || d.RootTag != "CstmrCdtTrfInitn" {
		t.Errorf("unexpected descriptor: %#v", d)
	}
	if d.Namespace != "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03" {
		t.Errorf("namespace=%q", d.Namespace)
	}
	if d.SchemaLocation != "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03 pain.001.001.03.xsd" {
		t.Errorf("schema location=%q", d.SchemaLocation)
	}

	d, err = Lookup("pain.001.001.03.ch.02")
	if err != nil {
		t.Fatal(err)
	}
	if d.Namespace != "http://www.six-interbank-clearing.com/de/pain.001.001.03.ch.02.xsd" {
		t.Errorf("namespace=%q", d.Namespace)
	}

	if _, err := Lookup("pain.008.001.02"); !errors.Is(err, ErrUnknown) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestKnown(t *testing.T) {
	all := Known()
	if len(all) != 4 {
		t.Fatalf("got %d schemas", len(all))
	}
	if all[0].Name != Pain00100103 || all[3].Name != Pain00100303 {
		t.Errorf("unexpected order: %v", all)
	}
}

func TestDescriptor__Compatibility(t *testing.T) {
	cases := []struct {
		schema       Name
		debtorBIC    bool
		currency     string
		serviceLevel string
		creditorBIC  bool
		compatible   bool
	}{
		{Pain00100103, false, "EUR", "SEPA", false, true},
		{Pain00100103, false, "CHF", "", false, true},
		{Pain00100103, false, "CHF", "SEPA", false, false},
		{Pain00100103, false, "EUR", "URGP", false, false},

		{Pain00100203, true, "EUR", "SEPA", true, true},
		{Pain00100203, false, "EUR", "SEPA", true, false},
		{Pain00100203, true, "EUR", "SEPA", false, false},
		{Pain00100203, true, "EUR", "", true, false},
		{Pain00100203, true, "CHF", "SEPA", true, false},

		{Pain00100303, false, "EUR", "", false, true},
		{Pain00100303, false, "EUR", "URGP", false, true},
		{Pain00100303, false, "GBP", "", false, false},

		{Pain00100103CH02, true, "CHF", "", false, true},
		{Pain00100103CH02, true, "EUR", "SEPA", true, true},
		{Pain00100103CH02, false, "CHF", "", false, false},
	}
	for i, tc := range cases {
		d, err := Lookup(string(tc.schema))
		if err != nil {
			t.Fatal(err)
		}
		err = d.CheckAccount(tc.debtorBIC)
		if err == nil {
			err = d.CheckTransaction(tc.currency, tc.serviceLevel, tc.creditorBIC)
		}
		if tc.compatible && err != nil {
			t.Errorf("#%d %s: unexpected error: %v", i, tc.schema, err)
		}
		if !tc.compatible && !errors.Is(err, ErrIncompatible) {
			t.Errorf("#%d %s: expected incompatibility, got %v", i, tc.schema, err)
		}
	}
}
