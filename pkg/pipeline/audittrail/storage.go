// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package audittrail

import (
	"errors"

	"github.com/moov-io/sepa/pkg/config"
)

// Storage keeps a copy of every pain.001 document handed to the bank, for records
// retention. Files left on the bank's server are outside of its scope.
type Storage interface {
	// SaveFile stores doc under filename, encrypting it first when keys are configured.
	SaveFile(filename string, doc []byte) error

	Close() error
}

// NewStorage returns a Storage for cfg. Without an audit trail config documents
// are not retained.
func NewStorage(cfg *config.AuditTrail) (Storage, error) {
	if cfg == nil {
		return discard{}, nil
	}
	if cfg.BucketURI == "" {
		return nil, errors.New("audittrail: missing bucket_uri")
	}
	return newBlobStorage(cfg)
}

type discard struct{}

func (discard) SaveFile(string, []byte) error { return nil }
func (discard) Close() error                  { return nil }
