// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"errors"
	"io"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var (
	agentUp = prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Name: "upload_agent_up",
		Help: "Status of the upload agent's connection",
	}, []string{"protocol", "hostname"})
)

// File is a document to deliver. Contents are always closed by the Agent.
type File struct {
	Filename string
	Contents io.ReadCloser
}

func (f File) Close() error {
	if f.Contents == nil {
		return nil
	}
	return f.Contents.Close()
}

// Agent delivers pain.001 files to the bank's file server.
type Agent interface {
	UploadFile(f File) error
	Delete(path string) error

	OutboundPath() string
	Hostname() string

	Ping() error
	Close() error
}

func New(logger log.Logger, cfg *config.Upload) (Agent, error) {
	if cfg == nil {
		return nil, errors.New("upload: missing config")
	}
	switch {
	case cfg.FTP != nil:
		return newFTPTransferAgent(logger, cfg)
	case cfg.SFTP != nil:
		return newSFTPTransferAgent(logger, cfg)
	}
	return nil, errors.New("upload: unknown protocol, configure ftp or sftp")
}

func record(protocol, hostname string, err error) {
	v := 1.0
	if err != nil {
		v = 0
	}
	agentUp.With("protocol", protocol, "hostname", hostname).Set(v)
}
