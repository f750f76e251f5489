// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"errors"
)

type Tracing struct {
	ServiceName string

	// Rate is the share of requests sampled, 1.0 records every span.
	Rate float64
}

func (cfg *Tracing) Validate() error {
	if cfg == nil {
		return nil
	}
	if cfg.Rate < 0 || cfg.Rate > 1 {
		return errors.New("rate must be between 0 and 1")
	}
	return nil
}
