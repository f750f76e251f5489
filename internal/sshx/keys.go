// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package sshx

import (
	"bytes"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/ssh"
)

// ReadPubKey parses a host public key from config. Accepted forms are an
// authorized_keys line (sshd(8)) or the SSH wire encoding (RFC 4253, section 6.6),
// either of them optionally base64 encoded.
func ReadPubKey(data []byte) (ssh.PublicKey, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("sshx: empty public key")
	}

	var candidates [][]byte
	if decoded, err := base64.StdEncoding.DecodeString(string(trimmed)); err == nil && len(decoded) > 0 {
		candidates = append(candidates, decoded)
	}
	candidates = append(candidates, data)

	var err error
	for _, c := range candidates {
		var pub ssh.PublicKey
		if pub, _, _, _, err = ssh.ParseAuthorizedKey(c); err == nil {
			return pub, nil
		}
		if pub, err = ssh.ParsePublicKey(c); err == nil {
			return pub, nil
		}
	}
	return nil, err
}
