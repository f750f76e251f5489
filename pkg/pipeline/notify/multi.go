// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"fmt"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/moov-io/base"
)

// MultiSender fans a Message out to every configured Sender. One failing
// Sender never stops the others; their errors are returned together.
type MultiSender struct {
	logger  log.Logger
	senders []Sender
}

func NewMultiSender(logger log.Logger, cfg *config.PipelineNotifications) (*MultiSender, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	ms := &MultiSender{logger: logger}
	if cfg == nil {
		return ms, nil
	}

	var setups []func() (Sender, error)
	if cfg.Email != nil {
		setups = append(setups, func() (Sender, error) { return NewEmail(cfg.Email) })
	}
	if cfg.PagerDuty != nil {
		setups = append(setups, func() (Sender, error) { return NewPagerDuty(cfg.PagerDuty) })
	}
	if cfg.Slack != nil {
		setups = append(setups, func() (Sender, error) { return NewSlack(cfg.Slack) })
	}
	for _, setup := range setups {
		sender, err := setup()
		if err != nil {
			return nil, err
		}
		ms.senders = append(ms.senders, sender)
	}
	return ms, nil
}

func (ms *MultiSender) Info(msg *Message) error {
	return ms.each("Info", func(s Sender) error { return s.Info(msg) })
}

func (ms *MultiSender) Critical(msg *Message) error {
	return ms.each("Critical", func(s Sender) error { return s.Critical(msg) })
}

func (ms *MultiSender) each(level string, send func(Sender) error) error {
	var el base.ErrorList
	for i := range ms.senders {
		if err := send(ms.senders[i]); err != nil {
			ms.logger.Log("notify", fmt.Sprintf("multi-sender: %s %T: %v", level, ms.senders[i], err))
			el.Add(err)
		}
	}
	if el.Empty() {
		return nil
	}
	return el
}
