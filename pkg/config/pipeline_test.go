// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestPipeline(t *testing.T) {
	cfg := Pipeline{}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestPreupload(t *testing.T) {
	cfg := &PreUpload{
		GPG: &GPG{
			KeyFile: "", // intentionally left blank
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error")
	}

	cfg.GPG.KeyFile = "bank.pub"
	cfg.GPG.Signer = &Signer{KeyPassword: "secret"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error")
	}
	cfg.GPG.Signer.KeyFile = "sepa.priv"
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}

	bs, err := json.Marshal(cfg.GPG.Signer)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bs), `"KeyPassword":"s****t"`) {
		t.Errorf("unexpected JSON: %s", bs)
	}
}

func TestStreamPipeline(t *testing.T) {
	cfg := &StreamPipeline{
		InMem: &InMemPipeline{
			URL: "", // intentionally left blank
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Error(err)
	}

	cfg.InMem = nil
	cfg.Kafka = &KafkaPipeline{
		Brokers: []string{},
	}
	if err := cfg.Validate(); err == nil {
		t.Error(err)
	}
}

func TestPipelineNotifications(t *testing.T) {
	cfg := &PipelineNotifications{
		Email: &Email{
			From: "", // intentionally left blank
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Error(err)
	}
	cfg.Email = nil

	cfg.PagerDuty = &PagerDuty{ApiKey: ""}
	if err := cfg.Validate(); err == nil {
		t.Error(err)
	}
	cfg.PagerDuty = nil

	cfg.Slack = &Slack{WebhookURL: ""}
	if err := cfg.Validate(); err == nil {
		t.Error(err)
	}
}

func TestOutput(t *testing.T) {
	var cfg *Output
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
	for _, format := range []string{"", "xml", "base64", "encrypted-bytes"} {
		cfg = &Output{Format: format}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", format, err)
		}
	}
	cfg = &Output{Format: "nacha"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error")
	}
}

func TestStaging(t *testing.T) {
	var cfg *Staging
	if cfg.Dir() != "storage" {
		t.Errorf("unexpected default: %s", cfg.Dir())
	}
	cfg = &Staging{Directory: "/opt/sepa"}
	if cfg.Dir() != "/opt/sepa" {
		t.Errorf("unexpected directory: %s", cfg.Dir())
	}
}

func TestEmailTemplate(t *testing.T) {
	var buf bytes.Buffer
	var cfg *Email
	err := cfg.Tmpl().Execute(&buf, map[string]interface{}{
		"Verb":                 "upload",
		"CompanyName":          "Moov",
		"Filename":             "20200630-MOOV-1.xml",
		"MessageID":            "MOOV/1",
		"NumberOfTransactions": 2,
		"ControlSum":           "109.75",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "uploaded from Moov: 20200630-MOOV-1.xml") {
		t.Errorf("unexpected email: %s", buf.String())
	}
}
