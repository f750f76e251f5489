// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"testing"

	"github.com/moov-io/sepa/pkg/validator"
)

func TestAccount__Validate(t *testing.T) {
	acct := &Account{
		Name: "Schuldner GmbH",
		IBAN: "DE87200500001234567890",
		BIC:  String("BANKDEFFXXX"),
	}
	if err := acct.Validate(); err != nil {
		t.Fatal(err)
	}

	acct.BIC = nil
	if err := acct.Validate(); err != nil {
		t.Errorf("BIC is optional: %v", err)
	}

	acct = &Account{IBAN: "DE87", BIC: String("BANK")}
	errs, ok := acct.Validate().(validator.Errors)
	if !ok {
		t.Fatal("expected validator.Errors")
	}
	if len(errs) != 3 {
		t.Errorf("unexpected errors: %v", errs)
	}

	var missing *Account
	if err := missing.Validate(); err == nil {
		t.Error("expected error")
	}
}

func TestAccount__Normalize(t *testing.T) {
	acct := &Account{
		Name: "Schuldner\nGmbH",
		IBAN: "DE87 2005 0000 1234 5678 90",
	}
	acct.Normalize()
	if acct.Name != "Schuldner GmbH" || acct.IBAN != "DE87200500001234567890" || acct.BIC != nil {
		t.Errorf("unexpected account: %#v", acct)
	}
}
