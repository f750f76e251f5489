// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package gpgx

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func writeKeys(t *testing.T) (string, string) {
	t.Helper()

	dir, err := ioutil.TempDir("", "gpgx")
	if err != nil {
		t.Fatal(err)
	}
	pub, priv, err := GenerateKeys("Sepa Test", "test@moov.io")
	if err != nil {
		t.Fatal(err)
	}
	pubPath, privPath := filepath.Join(dir, "sepa.pub"), filepath.Join(dir, "sepa.key")
	if err := ioutil.WriteFile(pubPath, pub, 0600); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(privPath, priv, 0600); err != nil {
		t.Fatal(err)
	}
	return pubPath, privPath
}

func TestGPG(t *testing.T) {
	pubPath, privPath := writeKeys(t)
	defer os.RemoveAll(filepath.Dir(pubPath))

	// Encrypt
	pubKey, err := ReadArmoredKeyFile(pubPath)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Encrypt([]byte("<Document/>"), pubKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(msg) == 0 {
		t.Error("empty encrypted message")
	}

	// Decrypt
	privKey, err := ReadPrivateKeyFile(privPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decrypt(msg, privKey)
	if err != nil {
		t.Fatal(err)
	}
	if v := string(out); v != "<Document/>" {
		t.Errorf("got %q", v)
	}

	// public keys can't decrypt
	if _, err := Decrypt(msg, pubKey); err == nil {
		t.Error("expected error")
	}
}

func TestGPG__errors(t *testing.T) {
	if _, err := ReadArmoredKeyFile(filepath.Join("testdata", "missing.pub")); err == nil {
		t.Error("expected error")
	}
	if _, err := ReadArmoredKey([]byte("not a key")); err == nil {
		t.Error("expected error")
	}
	if _, err := Encrypt([]byte("hello"), nil); err == nil {
		t.Error("expected error")
	}
}

func TestGPG__signed(t *testing.T) {
	pubPath, privPath := writeKeys(t)
	defer os.RemoveAll(filepath.Dir(pubPath))

	signerPub, signerPriv := writeKeys(t)
	defer os.RemoveAll(filepath.Dir(signerPub))

	pubKey, err := ReadArmoredKeyFile(pubPath)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ReadPrivateKeyFile(signerPriv, nil)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := EncryptSigned([]byte("<Document/>"), pubKey, signer[0])
	if err != nil {
		t.Fatal(err)
	}

	privKey, err := ReadPrivateKeyFile(privPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	signerKey, err := ReadArmoredKeyFile(signerPub)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecryptVerified(msg, append(privKey, signerKey...))
	if err != nil {
		t.Fatal(err)
	}
	if v := string(out); v != "<Document/>" {
		t.Errorf("got %q", v)
	}

	// without the signer's public key the signature can't be checked
	if _, err := DecryptVerified(msg, privKey); err == nil {
		t.Error("expected error")
	}

	// unsigned messages are rejected
	plain, err := Encrypt([]byte("<Document/>"), pubKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecryptVerified(plain, append(privKey, signerKey...)); err == nil {
		t.Error("expected error")
	}
}

func TestGPG__generatedKeys(t *testing.T) {
	pub, priv, err := GenerateKeys("Sepa Test", "test@moov.io")
	if err != nil {
		t.Fatal(err)
	}
	pubKey, err := ReadArmoredKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Encrypt([]byte("<Document/>"), pubKey)
	if err != nil {
		t.Fatalf("encrypt with generated key: %v", err)
	}

	privKey, err := ReadArmoredKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decrypt(msg, privKey)
	if err != nil {
		t.Fatal(err)
	}
	if v := string(out); v != "<Document/>" {
		t.Errorf("got %q", v)
	}
}
