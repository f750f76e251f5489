// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package credittransfer

import (
	"sort"
	"strings"
)

// CountrySet is a versioned list of countries participating in SEPA. Creditor accounts
// in these countries are rendered as IBAN, all others as a proprietary identifier.
type CountrySet struct {
	Version string
	codes   map[string]bool
}

// DefaultCountries is the SEPA membership used unless configuration overrides it.
var DefaultCountries = NewCountrySet("2020",
	"AD", "AT", "BE", "BG", "CH", "CY", "CZ", "DE", "DK", "EE", "ES", "FI", "FR", "GB", "GI", "GR", "HU",
	"IE", "IS", "IT", "LI", "LT", "LU", "LV", "MC", "MT", "NL", "NO", "PL", "PT", "RO", "SE", "SI", "SK",
)

func NewCountrySet(version string, codes ...string) CountrySet {
	cs := CountrySet{
		Version: version,
		codes:   make(map[string]bool, len(codes)),
	}
	for i := range codes {
		cs.codes[strings.ToUpper(strings.TrimSpace(codes[i]))] = true
	}
	return cs
}

// Empty reports if the set holds no countries, as for the zero value.
func (cs CountrySet) Empty() bool {
	return len(cs.codes) == 0
}

// Contains reports if the two letter country code is a SEPA member.
func (cs CountrySet) Contains(country string) bool {
	return cs.codes[strings.ToUpper(country)]
}

// IsSEPA reports if the account's country, read from the first two characters of
// the IBAN in any case, is a SEPA member.
func (cs CountrySet) IsSEPA(iban string) bool {
	if len(iban) < 2 {
		return false
	}
	return cs.Contains(iban[:2])
}

// Codes returns the sorted country codes.
func (cs CountrySet) Codes() []string {
	out := make([]string, 0, len(cs.codes))
	for code := range cs.codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
