// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package transform

import (
	"errors"
	"fmt"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
)

// Result is a rendered pain.001 document along with any transformed form of it.
// Document is never modified so the audit trail keeps the plain XML.
type Result struct {
	Document  []byte
	Encrypted []byte
}

type PreUpload interface {
	Transform(res *Result) (*Result, error)
}

// ForUpload runs each transformer over a document in order and stops at the first failure.
func ForUpload(doc []byte, funcs []PreUpload) (*Result, error) {
	if len(doc) == 0 {
		return nil, errors.New("transform: empty document")
	}
	res := &Result{Document: doc}
	for i := range funcs {
		next, err := funcs[i].Transform(res)
		if err != nil {
			return res, fmt.Errorf("transform %v: %v", funcs[i], err)
		}
		res = next
	}
	return res, nil
}

// Multi builds the configured transformers. Nothing configured means documents
// are uploaded as rendered.
func Multi(logger log.Logger, cfg *config.PreUpload) ([]PreUpload, error) {
	if cfg == nil || cfg.GPG == nil {
		return nil, nil
	}
	gpg, err := NewGPGEncryptor(logger, cfg.GPG)
	if err != nil {
		return nil, err
	}
	return []PreUpload{gpg}, nil
}
