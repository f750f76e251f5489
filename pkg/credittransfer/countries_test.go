// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package credittransfer

import (
	"testing"
)

func TestCountrySet(t *testing.T) {
	if DefaultCountries.Version != "2020" || len(DefaultCountries.Codes()) != 34 {
		t.Errorf("unexpected default countries: %s %v", DefaultCountries.Version, DefaultCountries.Codes())
	}
	for _, iban := range []string{"DE37112589611964645802", "fr1420041010050500013M02606", "CH9300762011623852957"} {
		if !DefaultCountries.IsSEPA(iban) {
			t.Errorf("expected %s to be in SEPA", iban)
		}
	}
	for _, iban := range []string{"", "D", "TR330006100519786457841326", "BR1500000000000010932840814P2"} {
		if DefaultCountries.IsSEPA(iban) {
			t.Errorf("expected %s to be outside of SEPA", iban)
		}
	}

	cs := NewCountrySet("test", " de", "TR")
	if !cs.IsSEPA("TR330006100519786457841326") || cs.IsSEPA("FR1420041010050500013M02606") {
		t.Error("unexpected membership")
	}
	if codes := cs.Codes(); len(codes) != 2 || codes[0] != "DE" || codes[1] != "TR" {
		t.Errorf("codes=%v", codes)
	}
	if !(CountrySet{}).Empty() || cs.Empty() {
		t.Error("unexpected Empty")
	}
}
