// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/moov-io/sepa/pkg/config"
	"github.com/moov-io/sepa/pkg/pipeline/transform"
)

// Formatter writes the bytes that are uploaded for a transformed pain.001 document.
type Formatter interface {
	Format(buf *bytes.Buffer, res *transform.Result) error
}

var formatters = map[string]func() Formatter{
	"":                func() Formatter { return &XML{} },
	"xml":             func() Formatter { return &XML{} },
	"base64":          func() Formatter { return &Base64{} },
	"encrypted-bytes": func() Formatter { return &Encrypted{} },
}

// NewFormatter returns the Formatter named by cfg.Format (case-insensitive). XML
// is used when nothing is configured.
func NewFormatter(cfg *config.Output) (Formatter, error) {
	name := ""
	if cfg != nil {
		name = strings.ToLower(strings.TrimSpace(cfg.Format))
	}
	if f, ok := formatters[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown output format %q", cfg.Format)
}
