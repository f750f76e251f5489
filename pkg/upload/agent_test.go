// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type sftpDeployment struct {
	listener net.Listener
	hostKey  ssh.PublicKey
	dir      string
}

func (dep *sftpDeployment) Close() {
	dep.listener.Close()
	os.RemoveAll(dep.dir)
}

// spawnSFTP runs an in-process SSH server offering the sftp subsystem over the local
// filesystem, accepting user "sepa" with password "secret".
func spawnSFTP(t *testing.T) *sftpDeployment {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		t.Fatal(err)
	}
	conf := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == "sepa" && string(pass) == "secret" {
				return nil, nil
			}
			return nil, errors.New("access denied")
		},
	}
	conf.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	dir, err := ioutil.TempDir("", "sepa-sftp")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSSH(conn, conf)
		}
	}()
	return &sftpDeployment{
		listener: ln,
		hostKey:  signer.PublicKey(),
		dir:      dir,
	}
}

func serveSSH(conn net.Conn, conf *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(conn, conf)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			return
		}
		go func(in <-chan *ssh.Request) {
			for req := range in {
				ok := req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp"
				req.Reply(ok, nil)
			}
		}(requests)

		server, err := sftp.NewServer(channel)
		if err != nil {
			channel.Close()
			continue
		}
		go func() {
			server.Serve()
			server.Close()
		}()
	}
}

func (dep *sftpDeployment) config() *config.Upload {
	return &config.Upload{
		OutboundPath: filepath.Join(dep.dir, "outbound"),
		Cutoffs: config.Cutoffs{
			Windows: []string{"16:30"},
		},
		SFTP: &config.SFTP{
			Hostname:      dep.listener.Addr().String(),
			Username:      "sepa",
			Password:      "secret",
			HostPublicKey: string(ssh.MarshalAuthorizedKey(dep.hostKey)),
		},
	}
}

func TestSFTP__UploadFile(t *testing.T) {
	dep := spawnSFTP(t)
	defer dep.Close()

	agent, err := New(log.NewNopLogger(), dep.config())
	if err != nil {
		t.Fatal(err)
	}
	defer agent.Close()

	if err := agent.Ping(); err != nil {
		t.Fatal(err)
	}

	err = agent.UploadFile(File{
		Filename: "../../escape/20200630-MOOV_1.xml",
		Contents: ioutil.NopCloser(strings.NewReader("<Document/>")),
	})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(agent.OutboundPath(), "20200630-MOOV_1.xml")
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bs, []byte("<Document/>")) {
		t.Errorf("unexpected contents: %q", bs)
	}

	if err := agent.Delete(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be deleted: %v", path, err)
	}
	// deleting a missing file is fine
	if err := agent.Delete(path); err != nil {
		t.Error(err)
	}
}

func TestSFTP__badHostKey(t *testing.T) {
	dep := spawnSFTP(t)
	defer dep.Close()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	other, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	cfg := dep.config()
	cfg.SFTP.HostPublicKey = string(ssh.MarshalAuthorizedKey(other))
	if _, err := New(log.NewNopLogger(), cfg); err == nil {
		t.Error("expected error")
	}
}

func TestSFTP__badPassword(t *testing.T) {
	dep := spawnSFTP(t)
	defer dep.Close()

	cfg := dep.config()
	cfg.SFTP.Password = "wrong"
	if _, err := New(log.NewNopLogger(), cfg); err == nil {
		t.Error("expected error")
	}

	cfg.SFTP.Password = ""
	if _, err := New(log.NewNopLogger(), cfg); err == nil || !strings.Contains(err.Error(), "no auth method") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFTP__unreachable(t *testing.T) {
	// grab a free port and close it so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	cfg := &config.Upload{
		FTP: &config.FTP{
			Hostname: addr,
			Username: "sepa",
			Password: "secret",
		},
	}
	if _, err := New(log.NewNopLogger(), cfg); err == nil {
		t.Error("expected error")
	}

	cfg.AllowedIPs = "10.0.0.0/8"
	if _, err := New(log.NewNopLogger(), cfg); err == nil || !strings.Contains(err.Error(), "is not allowed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew__errors(t *testing.T) {
	if _, err := New(log.NewNopLogger(), nil); err == nil {
		t.Error("expected error")
	}
	if _, err := New(log.NewNopLogger(), &config.Upload{}); err == nil {
		t.Error("expected error")
	}
}

func TestTLSDialOption(t *testing.T) {
	if opt, err := tlsDialOption(""); opt != nil || err != nil {
		t.Errorf("unexpected option=%v error=%v", opt, err)
	}
	if _, err := tlsDialOption(filepath.Join("testdata", "missing.pem")); err == nil {
		t.Error("expected error")
	}

	fd, err := ioutil.TempFile("", "sepa-ca")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(fd.Name())
	fd.WriteString("not a certificate")
	fd.Close()

	if _, err := tlsDialOption(fd.Name()); err == nil {
		t.Error("expected error")
	}
}

func TestMockAgent(t *testing.T) {
	agent := &MockAgent{}
	err := agent.UploadFile(File{
		Filename: "a.xml",
		Contents: ioutil.NopCloser(strings.NewReader("<Document/>\n")),
	})
	if err != nil {
		t.Fatal(err)
	}
	if bs, ok := agent.Uploaded("a.xml"); !ok || string(bs) != "<Document/>" {
		t.Errorf("unexpected upload: %q", bs)
	}
	if n := agent.Count(); n != 1 {
		t.Errorf("got %d uploads", n)
	}

	agent.Err = errors.New("bad error")
	if err := agent.Ping(); err == nil {
		t.Error("expected error")
	}
}
