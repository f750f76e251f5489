// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/moov-io/sepa/internal/sshx"
	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type SFTPTransferAgent struct {
	conn   *ssh.Client
	client *sftp.Client
	cfg    config.Upload
	logger log.Logger
	mu     sync.Mutex // protects all read/write methods
}

func newSFTPTransferAgent(logger log.Logger, cfg *config.Upload) (*SFTPTransferAgent, error) {
	if cfg == nil || cfg.SFTP == nil {
		return nil, errors.New("nil SFTP config")
	}
	agent := &SFTPTransferAgent{cfg: *cfg, logger: logger}

	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), cfg.SFTP.Hostname); err != nil {
		return nil, fmt.Errorf("sftp: %s is not allowed: %v", cfg.SFTP.Hostname, err)
	}

	_, err := agent.connection()

	return agent, err
}

// connection returns an sftp.Client which is connected to the remote server.
// This function will attempt to establish a new connection if none exists already.
//
// connection must be called within a mutex lock.
func (agent *SFTPTransferAgent) connection() (*sftp.Client, error) {
	if agent == nil || agent.cfg.SFTP == nil {
		return nil, errors.New("nil agent / config")
	}

	if agent.client != nil {
		// Verify the connection works and if not drop through and reconnect
		if _, err := agent.client.Getwd(); err == nil {
			return agent.client, nil
		}
		agent.client.Close()
		agent.client = nil
	}

	conn, stdin, stdout, err := sftpConnect(agent.logger, agent.cfg.SFTP)
	record("sftp", agent.cfg.SFTP.Hostname, err)
	if err != nil {
		return nil, fmt.Errorf("upload: %v", err)
	}
	agent.conn = conn

	opts := []sftp.ClientOption{
		sftp.MaxConcurrentRequestsPerFile(agent.cfg.SFTP.MaxConnections()),
		sftp.MaxPacket(agent.cfg.SFTP.PacketSize()),
	}
	client, err := sftp.NewClientPipe(stdout, stdin, opts...)
	if err != nil {
		go conn.Close()
		return nil, fmt.Errorf("upload: sftp connect: %v", err)
	}
	agent.client = client

	return agent.client, nil
}

var hostKeyWarning sync.Once

func sftpConnect(logger log.Logger, cfg *config.SFTP) (*ssh.Client, io.WriteCloser, io.Reader, error) {
	if cfg == nil {
		return nil, nil, nil, errors.New("nil sftp config")
	}

	conf := &ssh.ClientConfig{
		User:    cfg.Username,
		Timeout: cfg.Timeout(),
	}
	conf.SetDefaults()

	if cfg.HostPublicKey != "" {
		pubKey, err := sshx.ReadPubKey([]byte(cfg.HostPublicKey))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("problem parsing ssh public key: %v", err)
		}
		conf.HostKeyCallback = ssh.FixedHostKey(pubKey)
	} else {
		hostKeyWarning.Do(func() {
			logger.Log("sftp", "WARNING!!! Insecure default of skipping SFTP host key validation. Please set upload.sftp.hostPublicKey")
		})
		conf.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	}
	switch {
	case cfg.Password != "":
		conf.Auth = append(conf.Auth, ssh.Password(cfg.Password))
	case cfg.ClientPrivateKey != "":
		signer, err := readSigner(cfg.ClientPrivateKey)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sftpConnect: failed to read client private key: %v", err)
		}
		conf.Auth = append(conf.Auth, ssh.PublicKeys(signer))
	default:
		return nil, nil, nil, fmt.Errorf("sftpConnect: no auth method provided for %s", cfg.Hostname)
	}

	// Connect to the remote server, retrying a couple of times
	var client *ssh.Client
	var err error
	for i := 0; i < 3 && client == nil; i++ {
		if i > 0 {
			time.Sleep(250 * time.Millisecond)
		}
		client, err = ssh.Dial("tcp", cfg.Hostname, conf)
	}
	if client == nil {
		return nil, nil, nil, fmt.Errorf("sftpConnect: %s: %v", cfg.Hostname, err)
	}

	session, err := client.NewSession()
	if err != nil {
		go client.Close()
		return nil, nil, nil, err
	}
	if err = session.RequestSubsystem("sftp"); err != nil {
		go client.Close()
		return nil, nil, nil, err
	}
	pw, err := session.StdinPipe()
	if err != nil {
		go client.Close()
		return nil, nil, nil, err
	}
	pr, err := session.StdoutPipe()
	if err != nil {
		go client.Close()
		return nil, nil, nil, err
	}

	return client, pw, pr, nil
}

func readSigner(raw string) (ssh.Signer, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if len(decoded) > 0 && err == nil {
		return ssh.ParsePrivateKey(decoded)
	}
	return ssh.ParsePrivateKey([]byte(raw))
}

func (agent *SFTPTransferAgent) Ping() error {
	if agent == nil {
		return errors.New("nil SFTPTransferAgent")
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}
	_, err = conn.Getwd()
	record("sftp", agent.cfg.SFTP.Hostname, err)
	if err != nil {
		return fmt.Errorf("sftp: ping %v", err)
	}
	return nil
}

func (agent *SFTPTransferAgent) Close() error {
	if agent == nil {
		return nil
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	if agent.client != nil {
		agent.client.Close()
		agent.client = nil
	}
	if agent.conn != nil {
		agent.conn.Close()
		agent.conn = nil
	}
	return nil
}

func (agent *SFTPTransferAgent) Hostname() string {
	return agent.cfg.SFTP.Hostname
}

func (agent *SFTPTransferAgent) OutboundPath() string {
	return agent.cfg.OutboundPath
}

func (agent *SFTPTransferAgent) Delete(path string) error {
	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}

	info, err := conn.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("sftp: delete stat: %v", err)
	}
	if info != nil {
		if err := conn.Remove(path); err != nil {
			return fmt.Errorf("sftp: delete: %v", err)
		}
	}
	return nil
}

// UploadFile saves the content of File at the given filename in the OutboundPath directory
//
// The File's contents will always be closed
func (agent *SFTPTransferAgent) UploadFile(f File) error {
	defer f.Close()

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}

	dir := agent.cfg.OutboundPath
	if dir != "" {
		// Create OutboundPath if it doesn't exist
		if _, err := conn.Stat(dir); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("sftp: stat %s: %v", dir, err)
			}
			if err := conn.MkdirAll(dir); err != nil {
				return fmt.Errorf("sftp: problem creating parent dir %s: %v", dir, err)
			}
		}
	}

	// Take the base of f.Filename and our (out of band) OutboundPath to avoid accepting a write like '../../../../etc/passwd'.
	dest := path.Join(dir, filepath.Base(f.Filename))
	fd, err := conn.Create(dest)
	if err != nil {
		return fmt.Errorf("sftp: problem creating %s: %v", dest, err)
	}
	n, err := io.Copy(fd, f.Contents)
	if n == 0 || err != nil {
		fd.Close()
		return fmt.Errorf("sftp: problem copying (n=%d) %s: %v", n, f.Filename, err)
	}
	if err := fd.Chmod(0600); err != nil {
		fd.Close()
		return fmt.Errorf("sftp: problem chmod %s: %v", f.Filename, err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("sftp: problem closing %s: %v", f.Filename, err)
	}
	return nil
}
