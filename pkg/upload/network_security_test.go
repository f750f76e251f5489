// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"testing"

	"github.com/moov-io/sepa/pkg/config"
)

func TestRejectOutboundIPRange(t *testing.T) {
	cfg := &config.Upload{AllowedIPs: "127.0.0.1"}

	// exact IP match
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "127.0.0.1"); err != nil {
		t.Error(err)
	}

	// with a port
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "127.0.0.1:2222"); err != nil {
		t.Error(err)
	}

	// multiple allowed, but exact IP match
	cfg.AllowedIPs = "10.0.0.0/8,127.0.0.1"
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "127.0.0.1"); err != nil {
		t.Error(err)
	}

	// match range
	cfg.AllowedIPs = "127.0.0.0/8"
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "127.0.0.1"); err != nil {
		t.Error(err)
	}

	// no match
	cfg.AllowedIPs = "8.8.8.0/24"
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "127.0.0.1"); err == nil {
		t.Error("expected error")
	}

	// empty list, allow all
	cfg.AllowedIPs = ""
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "127.0.0.1"); err != nil {
		t.Errorf("expected no error: %v", err)
	}

	// error cases
	cfg.AllowedIPs = "afkjsafkjahfa"
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "127.0.0.1"); err == nil {
		t.Error("expected error")
	}
	cfg.AllowedIPs = "10.0.0.0/8"
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "lsjafkshfaksjfhas.invalid"); err == nil {
		t.Error("expected error")
	}
	cfg.AllowedIPs = "10...../8"
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), "127.0.0.1"); err == nil {
		t.Error("expected error")
	}
	if err := rejectOutboundIPRange(nil, "127.0.0.1:bad:port"); err == nil {
		t.Error("expected error")
	}
}

func TestParseAllowed(t *testing.T) {
	ipnet, err := parseAllowed(" 10.1.2.3 ")
	if err != nil {
		t.Fatal(err)
	}
	if ones, bits := ipnet.Mask.Size(); ones != 32 || bits != 32 {
		t.Errorf("unexpected mask %d/%d", ones, bits)
	}

	ipnet, err = parseAllowed("::1")
	if err != nil {
		t.Fatal(err)
	}
	if ones, bits := ipnet.Mask.Size(); ones != 128 || bits != 128 {
		t.Errorf("unexpected mask %d/%d", ones, bits)
	}

	ipnet, err = parseAllowed("192.168.0.0/16")
	if err != nil {
		t.Fatal(err)
	}
	if ipnet.String() != "192.168.0.0/16" {
		t.Errorf("unexpected range %s", ipnet)
	}

	if _, err := parseAllowed("10.0.0"); err == nil {
		t.Error("expected error")
	}
}
