// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package transform

import (
	"errors"
	"fmt"

	"github.com/moov-io/sepa/internal/gpgx"
	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
	"golang.org/x/crypto/openpgp"
)

// GPGEncryption encrypts documents for the bank's public key and optionally
// signs them with our own private key.
type GPGEncryption struct {
	pubKey openpgp.EntityList
	signer *openpgp.Entity
}

func NewGPGEncryptor(logger log.Logger, cfg *config.GPG) (*GPGEncryption, error) {
	if cfg == nil {
		return nil, errors.New("missing GPG config")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	pubKey, err := gpgx.ReadArmoredKeyFile(cfg.KeyFile)
	if err != nil {
		return nil, err
	}
	logger.Log("transform", fmt.Sprintf("using GPG key from %s", cfg.KeyFile))

	morph := &GPGEncryption{pubKey: pubKey}
	if cfg.Signer != nil {
		keys, err := gpgx.ReadPrivateKeyFile(cfg.Signer.KeyFile, []byte(cfg.Signer.KeyPassword))
		if err != nil {
			return nil, fmt.Errorf("gpg signer: %v", err)
		}
		morph.signer = keys[0]
		logger.Log("transform", fmt.Sprintf("signing documents with GPG key from %s", cfg.Signer.KeyFile))
	}
	return morph, nil
}

func (morph *GPGEncryption) Transform(res *Result) (*Result, error) {
	if res == nil || len(res.Document) == 0 {
		return res, errors.New("gpg: empty document")
	}
	bs, err := gpgx.EncryptSigned(res.Document, morph.pubKey, morph.signer)
	if err != nil {
		return res, err
	}
	res.Encrypted = bs
	return res, nil
}

func (morph *GPGEncryption) String() string {
	return fmt.Sprintf("GPG{pubKey:%v signed:%v}", len(morph.pubKey) > 0, morph.signer != nil)
}
