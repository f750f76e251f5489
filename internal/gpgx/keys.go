// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package gpgx wraps golang.org/x/crypto/openpgp for encrypting pain.001 documents
// before they leave the service.
package gpgx

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"

	// Keys without a preferred hash list fall back to RIPEMD160, which openpgp
	// only offers when it's registered.
	_ "golang.org/x/crypto/ripemd160"
)

// ReadArmoredKeyFile reads an armored public or private key ring from path.
func ReadArmoredKeyFile(path string) (openpgp.EntityList, error) {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadArmoredKey(bs)
}

func ReadArmoredKey(data []byte) (openpgp.EntityList, error) {
	keys, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gpg: %v", err)
	}
	if len(keys) == 0 {
		return nil, errors.New("gpg: no keys found")
	}
	return keys, nil
}

// ReadPrivateKeyFile reads an armored private key and decrypts it, along with its
// subkeys, using password.
func ReadPrivateKeyFile(path string, password []byte) (openpgp.EntityList, error) {
	keys, err := ReadArmoredKeyFile(path)
	if err != nil {
		return nil, err
	}
	entity := keys[0]
	if entity.PrivateKey == nil {
		return nil, errors.New("gpg: missing private key")
	}
	if err := entity.PrivateKey.Decrypt(password); err != nil {
		return nil, fmt.Errorf("gpg: private key: %v", err)
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey != nil {
			if err := sub.PrivateKey.Decrypt(password); err != nil {
				return nil, fmt.Errorf("gpg: subkey: %v", err)
			}
		}
	}
	return keys, nil
}

// Encrypt returns msg encrypted for pubkeys as an armored "PGP MESSAGE" block.
func Encrypt(msg []byte, pubkeys openpgp.EntityList) ([]byte, error) {
	return EncryptSigned(msg, pubkeys, nil)
}

// EncryptSigned is Encrypt which also signs msg with signer. The signer's private
// key must already be decrypted. A nil signer leaves the message unsigned.
func EncryptSigned(msg []byte, pubkeys openpgp.EntityList, signer *openpgp.Entity) ([]byte, error) {
	if len(pubkeys) == 0 {
		return nil, errors.New("gpg: no public keys")
	}

	var out bytes.Buffer
	armored, err := armor.Encode(&out, "PGP MESSAGE", nil)
	if err != nil {
		return nil, err
	}
	if signer != nil && (signer.PrivateKey == nil || signer.PrivateKey.Encrypted) {
		return nil, errors.New("gpg: signer requires a decrypted private key")
	}
	w, err := openpgp.Encrypt(armored, pubkeys, signer, nil, nil)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(msg); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	if err := armored.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Decrypt reads an armored message with a single decrypted private key.
func Decrypt(cipherArmored []byte, keys openpgp.EntityList) ([]byte, error) {
	if len(keys) != 1 || keys[0].PrivateKey == nil {
		return nil, errors.New("gpg: requires a single private key")
	}
	block, err := armor.Decode(bytes.NewReader(cipherArmored))
	if err != nil {
		return nil, err
	}
	md, err := openpgp.ReadMessage(block.Body, keys, nil, nil)
	if err != nil {
		return nil, err
	}
	bs, err := ioutil.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, err
	}
	if md.SignatureError != nil {
		return nil, md.SignatureError
	}
	return bs, nil
}

// DecryptVerified decrypts an armored message and requires a valid signature from
// one of the keys in keyring. The keyring holds the recipient's private key and the
// signer's public key.
func DecryptVerified(cipherArmored []byte, keyring openpgp.EntityList) ([]byte, error) {
	block, err := armor.Decode(bytes.NewReader(cipherArmored))
	if err != nil {
		return nil, err
	}
	md, err := openpgp.ReadMessage(block.Body, keyring, nil, nil)
	if err != nil {
		return nil, err
	}
	bs, err := ioutil.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, err
	}
	if !md.IsSigned || md.SignedBy == nil {
		return nil, errors.New("gpg: message is not signed by a known key")
	}
	if md.SignatureError != nil {
		return nil, fmt.Errorf("gpg: bad signature: %v", md.SignatureError)
	}
	return bs, nil
}

// GenerateKeys creates a new key pair and returns the armored public and (unencrypted)
// private key rings.
func GenerateKeys(name, email string) (pub []byte, priv []byte, err error) {
	entity, err := openpgp.NewEntity(name, "", email, nil)
	if err != nil {
		return nil, nil, err
	}

	var pubBuf bytes.Buffer
	w, err := armor.Encode(&pubBuf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := entity.Serialize(w); err != nil {
		return nil, nil, err
	}
	w.Close()

	var privBuf bytes.Buffer
	w, err = armor.Encode(&privBuf, openpgp.PrivateKeyType, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := entity.SerializePrivate(w, nil); err != nil {
		return nil, nil, err
	}
	w.Close()

	return pubBuf.Bytes(), privBuf.Bytes(), nil
}
