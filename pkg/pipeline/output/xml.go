// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"
	"errors"

	"github.com/moov-io/sepa/pkg/pipeline/transform"
)

// XML writes the encrypted document when present, otherwise the plain document.
type XML struct{}

func (*XML) Format(buf *bytes.Buffer, res *transform.Result) error {
	if res == nil {
		return errors.New("nil result")
	}
	if len(res.Encrypted) > 0 {
		buf.Write(res.Encrypted)
		return nil
	}
	if len(res.Document) == 0 {
		return errors.New("empty document")
	}
	buf.Write(res.Document)
	return nil
}
