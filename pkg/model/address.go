// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package model

import (
	"github.com/moov-io/sepa/pkg/convert"
	"github.com/moov-io/sepa/pkg/validator"
)

// Address is a creditor's postal address. StreetName, BuildingNumber, PostCode and
// TownName form a structured address while the address lines carry free text.
// Which of them a bank requires depends on the country.
type Address struct {
	StreetName     *string `json:"streetName,omitempty"`
	BuildingNumber *string `json:"buildingNumber,omitempty"`
	PostCode       *string `json:"postCode,omitempty"`
	TownName       *string `json:"townName,omitempty"`
	CountryCode    *string `json:"countryCode,omitempty"`
	AddressLine1   *string `json:"addressLine1,omitempty"`
	AddressLine2   *string `json:"addressLine2,omitempty"`
}

var addressLimits = []struct {
	field string
	max   int
	value func(a *Address) *string
}{
	{"street_name", 70, func(a *Address) *string { return a.StreetName }},
	{"building_number", 16, func(a *Address) *string { return a.BuildingNumber }},
	{"post_code", 16, func(a *Address) *string { return a.PostCode }},
	{"town_name", 35, func(a *Address) *string { return a.TownName }},
	{"address_line1", 70, func(a *Address) *string { return a.AddressLine1 }},
	{"address_line2", 70, func(a *Address) *string { return a.AddressLine2 }},
}

func (a *Address) Validate() error {
	if a == nil {
		return nil
	}
	var errs validator.Errors
	for _, limit := range addressLimits {
		if v := limit.value(a); v != nil && length(*v) > limit.max {
			errs.Add(limit.field, "is too long")
		}
	}
	if Present(a.CountryCode) && !countryCodeRegex.MatchString(*a.CountryCode) {
		errs.Add("country_code", validator.DefaultMessage)
	}
	return errs.Err()
}

// Normalize converts every text field into the SEPA character set.
func (a *Address) Normalize() {
	if a == nil {
		return
	}
	a.StreetName = convert.Pointer(a.StreetName)
	a.BuildingNumber = convert.Pointer(a.BuildingNumber)
	a.PostCode = convert.Pointer(a.PostCode)
	a.TownName = convert.Pointer(a.TownName)
	a.AddressLine1 = convert.Pointer(a.AddressLine1)
	a.AddressLine2 = convert.Pointer(a.AddressLine2)
}
