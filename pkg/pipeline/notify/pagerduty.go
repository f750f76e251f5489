// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"errors"
	"fmt"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/PagerDuty/go-pagerduty"
)

var (
	// manageEvent is replaced in tests
	manageEvent = pagerduty.ManageEvent
)

type PagerDuty struct {
	client     *pagerduty.Client
	routingKey string
}

func NewPagerDuty(cfg *config.PagerDuty) (*PagerDuty, error) {
	if cfg == nil {
		return nil, errors.New("nil pagerduty config")
	}
	return &PagerDuty{
		client:     pagerduty.NewClient(cfg.ApiKey),
		routingKey: cfg.RoutingKey,
	}, nil
}

// Ping checks the API key by listing the account's abilities.
func (pd *PagerDuty) Ping() error {
	if pd == nil || pd.client == nil {
		return errors.New("pagerduty: nil client")
	}
	_, err := pd.client.ListAbilities()
	return err
}

// Info is a no-op as successful uploads don't page anyone.
func (pd *PagerDuty) Info(msg *Message) error {
	return nil
}

func (pd *PagerDuty) Critical(msg *Message) error {
	event := pagerduty.V2Event{
		RoutingKey: pd.routingKey,
		Action:     "trigger",
		Payload: &pagerduty.V2Payload{
			Summary:  fmt.Sprintf("failed %s of %s (message %s)", msg.Direction, msg.Filename, msg.MessageID),
			Source:   pagerdutySource(msg),
			Severity: "critical",
		},
	}
	if _, err := manageEvent(event); err != nil {
		return fmt.Errorf("pagerduty: %v", err)
	}
	return nil
}

func pagerdutySource(msg *Message) string {
	if msg.Hostname != "" {
		return msg.Hostname
	}
	return "sepa"
}
