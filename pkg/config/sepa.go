// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"

	"github.com/moov-io/sepa/pkg/schema"
	"github.com/moov-io/sepa/pkg/validator"

	"github.com/shopspring/decimal"
)

type SEPA struct {
	// Schema is the pain.001 version messages are rendered for unless a request
	// chooses another one.
	Schema string

	// MessageIDPrefix starts generated message identifications.
	MessageIDPrefix string

	// Countries overrides the built-in list of SEPA member countries.
	Countries *Countries

	Limits Limits
}

func (cfg SEPA) Validate() error {
	if _, err := schema.Lookup(cfg.Schema); err != nil {
		return err
	}
	if cfg.MessageIDPrefix != "" && !validator.ValidMandateIdentifier(cfg.MessageIDPrefix) {
		return fmt.Errorf("invalid message id prefix %q", cfg.MessageIDPrefix)
	}
	if c := cfg.Countries; c != nil && (c.Version == "" || len(c.Codes) == 0) {
		return errors.New("countries: missing version or codes")
	}
	if err := cfg.Limits.Validate(); err != nil {
		return fmt.Errorf("limits: %v", err)
	}
	return nil
}

type Countries struct {
	Version string
	Codes   []string
}

type Limits struct {
	// HardLimit is the largest control sum a message may have. Messages over it are rejected.
	HardLimit string
}

func (cfg Limits) Validate() error {
	if cfg.HardLimit == "" {
		return nil
	}
	if _, err := decimal.NewFromString(cfg.HardLimit); err != nil {
		return fmt.Errorf("hard limit: %v", err)
	}
	return nil
}

// OverHardLimit reports if amt exceeds the configured hard limit. Without a limit
// nothing is over it.
func (cfg Limits) OverHardLimit(amt decimal.Decimal) (bool, error) {
	if cfg.HardLimit == "" {
		return false, nil
	}
	limit, err := decimal.NewFromString(cfg.HardLimit)
	if err != nil {
		return true, err
	}
	return amt.GreaterThan(limit), nil
}
