// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/moov-io/sepa/pkg/config"
	"github.com/moov-io/sepa/x/trace"
)

type Slack struct {
	webhookURL string
	client     *http.Client
}

func NewSlack(cfg *config.Slack) (*Slack, error) {
	if cfg == nil || cfg.WebhookURL == "" {
		return nil, errors.New("slack: missing webhook url")
	}
	return &Slack{
		webhookURL: cfg.WebhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type uploadStatus string

const (
	success uploadStatus = "successful"
	failed  uploadStatus = "failed"
)

func (s *Slack) Info(msg *Message) error {
	return s.send(marshalSlackMessage(success, msg))
}

func (s *Slack) Critical(msg *Message) error {
	return s.send(marshalSlackMessage(failed, msg))
}

func marshalSlackMessage(status uploadStatus, msg *Message) string {
	text := fmt.Sprintf("%s %s of %s", status, msg.Direction, msg.Filename)
	if msg.Hostname != "" {
		text += fmt.Sprintf(" to %s", msg.Hostname)
	}
	if msg.MessageID != "" {
		text += fmt.Sprintf(" (message %s with %d transactions totaling %s)", msg.MessageID, msg.NumberOfTransactions, msg.ControlSum)
	}
	return text
}

func (s *Slack) send(text string) error {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(map[string]string{"text": text}); err != nil {
		return err
	}

	req, err := http.NewRequest("POST", s.webhookURL, &body)
	if err != nil {
		return fmt.Errorf("slack: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	span := trace.StartClientSpan("slack-webhook", req)
	defer span.Finish()

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(ioutil.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("slack: unexpected response status %s", resp.Status)
	}
	return nil
}
