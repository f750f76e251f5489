// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"sync"

	"github.com/moov-io/sepa/pkg/messages"
)

type MockPublisher struct {
	Err error

	mu       sync.Mutex
	Uploads  []*messages.Message
	Canceled []string
}

func (p *MockPublisher) Upload(msg *messages.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	p.Uploads = append(p.Uploads, msg)
	return nil
}

func (p *MockPublisher) Cancel(messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	p.Canceled = append(p.Canceled, messageID)
	return nil
}

func (p *MockPublisher) Shutdown(ctx context.Context) error {
	return nil
}
