// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package output

import (
	"bytes"
	"encoding/base64"

	"github.com/moov-io/sepa/pkg/pipeline/transform"
)

type Base64 struct{}

// Format converts any encrypted bytes into standard Base64 encoding. If no encrypted
// bytes are passed then the XML document is Base64 encoded.
func (*Base64) Format(buf *bytes.Buffer, res *transform.Result) error {
	var plain bytes.Buffer
	if err := (&XML{}).Format(&plain, res); err != nil {
		return err
	}
	buf.WriteString(base64.StdEncoding.EncodeToString(plain.Bytes()))
	return nil
}
