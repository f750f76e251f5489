// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/moov-io/sepa/x/mask"
)

// Upload describes the bank's file server pain.001 files are delivered to.
type Upload struct {
	OutboundPath     string
	FilenameTemplate string

	// AllowedIPs is a comma separated list of IP addresses and CIDR ranges
	// the server's hostname has to resolve within.
	AllowedIPs string

	// CAFile is an optional PEM bundle for verifying FTPS servers.
	CAFile string

	Cutoffs Cutoffs

	FTP  *FTP
	SFTP *SFTP
}

func (cfg *Upload) Validate() error {
	if cfg == nil {
		return nil
	}
	if cfg.FTP == nil && cfg.SFTP == nil {
		return errors.New("missing ftp or sftp config")
	}
	if cfg.FTP != nil && cfg.SFTP != nil {
		return errors.New("only one of ftp or sftp can be configured")
	}
	if err := cfg.Cutoffs.Validate(); err != nil {
		return err
	}
	return nil
}

func (cfg *Upload) SplitAllowedIPs() []string {
	if cfg.AllowedIPs != "" {
		return strings.Split(cfg.AllowedIPs, ",")
	}
	return nil
}

type Cutoffs struct {
	Timezone string
	Windows  []string
}

func (cfg Cutoffs) Validate() error {
	if len(cfg.Windows) == 0 {
		return errors.New("cutoffs: missing windows")
	}
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return err
		}
	}
	return nil
}

type FTP struct {
	Hostname string
	Username string
	Password string

	DialTimeout  time.Duration
	DisabledEPSV bool
}

func (cfg *FTP) Timeout() time.Duration {
	if cfg == nil || cfg.DialTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.DialTimeout
}

func (cfg FTP) MarshalJSON() ([]byte, error) {
	type Aux FTP
	aux := Aux(cfg)
	if aux.Password != "" {
		aux.Password = mask.Password(aux.Password)
	}
	return json.Marshal(aux)
}

type SFTP struct {
	Hostname string
	Username string

	Password         string
	ClientPrivateKey string
	HostPublicKey    string

	DialTimeout           time.Duration
	MaxConnectionsPerFile int
	MaxPacketSize         int
}

func (cfg *SFTP) Timeout() time.Duration {
	if cfg == nil || cfg.DialTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.DialTimeout
}

func (cfg *SFTP) MaxConnections() int {
	if cfg == nil || cfg.MaxConnectionsPerFile <= 0 {
		return 8 // pkg/sftp's default
	}
	return cfg.MaxConnectionsPerFile
}

func (cfg *SFTP) PacketSize() int {
	if cfg == nil || cfg.MaxPacketSize <= 0 {
		return 20480
	}
	return cfg.MaxPacketSize
}

func (cfg SFTP) MarshalJSON() ([]byte, error) {
	type Aux SFTP
	aux := Aux(cfg)
	if aux.Password != "" {
		aux.Password = mask.Password(aux.Password)
	}
	if aux.ClientPrivateKey != "" {
		aux.ClientPrivateKey = mask.Password(aux.ClientPrivateKey)
	}
	return json.Marshal(aux)
}
