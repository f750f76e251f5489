// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"errors"
	"testing"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/PagerDuty/go-pagerduty"
	"github.com/stretchr/testify/require"
)

func TestPagerDuty(t *testing.T) {
	var captured pagerduty.V2Event
	manageEvent = func(e pagerduty.V2Event) (*pagerduty.V2EventResponse, error) {
		captured = e
		return &pagerduty.V2EventResponse{Status: "success"}, nil
	}
	defer func() { manageEvent = pagerduty.ManageEvent }()

	pd, err := NewPagerDuty(&config.PagerDuty{
		ApiKey:     "api-key",
		RoutingKey: "routing-key",
	})
	require.NoError(t, err)

	msg := testMessage()
	require.NoError(t, pd.Info(msg))
	require.Empty(t, captured.RoutingKey)

	require.NoError(t, pd.Critical(msg))
	require.Equal(t, "routing-key", captured.RoutingKey)
	require.Equal(t, "trigger", captured.Action)
	require.Equal(t, "sftp.bank.com", captured.Payload.Source)
	require.Equal(t, "critical", captured.Payload.Severity)
	require.Contains(t, captured.Payload.Summary, "failed upload of 20200529-131400-MOOV_1.xml (message MOOV/1)")
}

func TestPagerDuty__err(t *testing.T) {
	manageEvent = func(e pagerduty.V2Event) (*pagerduty.V2EventResponse, error) {
		return nil, errors.New("bad routing key")
	}
	defer func() { manageEvent = pagerduty.ManageEvent }()

	pd, err := NewPagerDuty(&config.PagerDuty{})
	require.NoError(t, err)
	require.Error(t, pd.Critical(&Message{Direction: Upload}))

	_, err = NewPagerDuty(nil)
	require.Error(t, err)

	var nilPD *PagerDuty
	require.Error(t, nilPD.Ping())
}

func TestPagerDuty__source(t *testing.T) {
	require.Equal(t, "sepa", pagerdutySource(&Message{}))
	require.Equal(t, "ftp.bank.com", pagerdutySource(&Message{Hostname: "ftp.bank.com"}))
}
