// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package sshx

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestSSHX_ReadPubKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pub, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	check := func(t *testing.T, data []byte) {
		key, err := ReadPubKey(data)
		if key == nil || err != nil {
			t.Fatalf("PublicKey=%v error=%v", key, err)
		}
		if key.Type() != ssh.KeyAlgoRSA {
			t.Errorf("unexpected key type %s", key.Type())
		}
	}

	// authorized_keys format, plain and base64 encoded
	authd := ssh.MarshalAuthorizedKey(pub)
	check(t, authd)
	check(t, []byte(base64.StdEncoding.EncodeToString(authd)))

	// wire format
	check(t, pub.Marshal())

	// surrounding whitespace from YAML block scalars
	check(t, append([]byte("\n  "), authd...))

	if _, err := ReadPubKey([]byte("invalid")); err == nil {
		t.Error("expected error")
	}
	if _, err := ReadPubKey([]byte("  \n")); err == nil {
		t.Error("expected error")
	}
}
