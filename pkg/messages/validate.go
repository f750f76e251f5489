// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package messages

import (
	"encoding/json"
	"net/http"

	"github.com/moov-io/sepa/pkg/validator"
	"github.com/moov-io/sepa/x/route"
)

type validateRequest struct {
	IBAN               *string `json:"iban"`
	BIC                *string `json:"bic"`
	CreditorIdentifier *string `json:"creditor_identifier"`
	MandateID          *string `json:"mandate_id"`
}

type validateResponse struct {
	Valid  bool             `json:"valid"`
	Errors validator.Errors `json:"errors"`
}

// checks builds a record of the identifiers present in the request along with their validators.
func (req validateRequest) checks() (validator.Fields, []validator.Validator) {
	fields := make(validator.Fields)
	var validators []validator.Validator
	if req.IBAN != nil {
		fields["iban"] = req.IBAN
		validators = append(validators, validator.IBAN())
	}
	if req.BIC != nil {
		fields["bic"] = req.BIC
		validators = append(validators, validator.BIC())
	}
	if req.CreditorIdentifier != nil {
		fields["creditor_identifier"] = req.CreditorIdentifier
		validators = append(validators, validator.CreditorIdentifier())
	}
	if req.MandateID != nil {
		fields["mandate_id"] = req.MandateID
		validators = append(validators, validator.MandateIdentifier())
	}
	return fields, validators
}

func (c *Router) validate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(c.logger, w, r)

		var req validateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			responder.Problem(err)
			return
		}

		fields, validators := req.checks()
		errs, err := validator.ValidateAll(fields, validators...)
		if err != nil {
			responder.Problem(err)
			return
		}
		responder.JSON(http.StatusOK, validateResponse{
			Valid:  errs.Empty(),
			Errors: errs,
		})
	}
}
