// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"sync"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/jlaffaye/ftp"
)

// FTPTransferAgent is an FTP implementation of a Agent
type FTPTransferAgent struct {
	conn   *ftp.ServerConn
	cfg    config.Upload
	logger log.Logger
	mu     sync.Mutex // protects all read/write methods
}

func newFTPTransferAgent(logger log.Logger, cfg *config.Upload) (*FTPTransferAgent, error) {
	if cfg == nil || cfg.FTP == nil {
		return nil, errors.New("nil FTP config")
	}
	agent := &FTPTransferAgent{
		cfg:    *cfg,
		logger: logger,
	}

	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), cfg.FTP.Hostname); err != nil {
		return nil, fmt.Errorf("ftp: %s is not allowed: %v", cfg.FTP.Hostname, err)
	}

	_, err := agent.connection() // initial connection

	return agent, err
}

// connection returns an ftp.ServerConn which is connected to the remote server.
// This function will attempt to establish a new connection if none exists already.
//
// connection must be called within a mutex lock as the underlying FTP client is not
// goroutine-safe.
func (agent *FTPTransferAgent) connection() (*ftp.ServerConn, error) {
	if agent == nil || agent.cfg.FTP == nil {
		return nil, errors.New("nil agent / config")
	}

	if agent.conn != nil {
		// Verify the connection works and if not drop through and reconnect
		if err := agent.conn.NoOp(); err == nil {
			return agent.conn, nil
		}
		agent.conn.Quit()
		agent.conn = nil
	}

	opts := []ftp.DialOption{
		ftp.DialWithTimeout(agent.cfg.FTP.Timeout()),
		ftp.DialWithDisabledEPSV(agent.cfg.FTP.DisabledEPSV),
	}
	tlsOpt, err := tlsDialOption(agent.cfg.CAFile)
	if err != nil {
		return nil, err
	}
	if tlsOpt != nil {
		opts = append(opts, *tlsOpt)
	}

	conn, err := ftp.Dial(agent.cfg.FTP.Hostname, opts...)
	record("ftp", agent.cfg.FTP.Hostname, err)
	if err != nil {
		return nil, fmt.Errorf("ftp: dial: %v", err)
	}
	if err := conn.Login(agent.cfg.FTP.Username, agent.cfg.FTP.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("ftp: login: %v", err)
	}
	agent.conn = conn

	return agent.conn, nil
}

func tlsDialOption(caFilePath string) (*ftp.DialOption, error) {
	if caFilePath == "" {
		return nil, nil
	}
	bs, err := ioutil.ReadFile(caFilePath)
	if err != nil {
		return nil, fmt.Errorf("tlsDialOption: failed to read %s: %v", caFilePath, err)
	}
	pool, err := x509.SystemCertPool()
	if pool == nil || err != nil {
		pool = x509.NewCertPool()
	}
	if ok := pool.AppendCertsFromPEM(bs); !ok {
		return nil, fmt.Errorf("tlsDialOption: problem with AppendCertsFromPEM from %s", caFilePath)
	}
	opt := ftp.DialWithTLS(&tls.Config{
		RootCAs: pool,
	})
	return &opt, nil
}

func (agent *FTPTransferAgent) Ping() error {
	if agent == nil {
		return errors.New("nil FTPTransferAgent")
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}
	err = conn.NoOp()
	record("ftp", agent.cfg.FTP.Hostname, err)
	return err
}

func (agent *FTPTransferAgent) Close() error {
	if agent == nil {
		return nil
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	if agent.conn == nil {
		return nil
	}
	err := agent.conn.Quit()
	agent.conn = nil
	return err
}

func (agent *FTPTransferAgent) Hostname() string {
	return agent.cfg.FTP.Hostname
}

func (agent *FTPTransferAgent) OutboundPath() string {
	return agent.cfg.OutboundPath
}

func (agent *FTPTransferAgent) Delete(path string) error {
	agent.mu.Lock()
	defer agent.mu.Unlock()

	if path == "" || strings.HasSuffix(path, "/") {
		return fmt.Errorf("FTPTransferAgent: invalid path %v", path)
	}

	conn, err := agent.connection()
	if err != nil {
		return err
	}
	return conn.Delete(path)
}

// UploadFile saves the content of File at the given filename in the OutboundPath directory
//
// The File's contents will always be closed
func (agent *FTPTransferAgent) UploadFile(f File) error {
	defer f.Close()

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}

	// move into the outbound directory and set a defer to move back
	wd, err := conn.CurrentDir()
	if err != nil {
		return err
	}
	if agent.cfg.OutboundPath != "" {
		if err := conn.ChangeDir(agent.cfg.OutboundPath); err != nil {
			return fmt.Errorf("ftp: change dir %s: %v", agent.cfg.OutboundPath, err)
		}
	}
	defer func(path string) {
		if err := conn.ChangeDir(path); err != nil {
			agent.logger.Log("ftp", fmt.Sprintf("problem returning to %s: %v", path, err))
		}
	}(wd)

	// Take the base of f.Filename and our (out of band) OutboundPath to avoid accepting a write like '../../../../etc/passwd'.
	return conn.Stor(filepath.Base(f.Filename), f.Contents)
}
