// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package messages

import (
	"time"
)

type MockRepository struct {
	Message  *Message
	Messages []*Message
	Err      error

	Saved    []*Message
	Uploaded []string
}

func (r *MockRepository) GetMessage(messageID string) (*Message, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Message, nil
}

func (r *MockRepository) ListMessages(params ListParams) ([]*Message, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Messages, nil
}

func (r *MockRepository) SaveMessage(msg *Message) error {
	if r.Err != nil {
		return r.Err
	}
	r.Saved = append(r.Saved, msg)
	return nil
}

func (r *MockRepository) DeleteMessage(messageID string) error {
	return r.Err
}

func (r *MockRepository) MarkUploaded(messageIDs []string, when time.Time) error {
	if r.Err != nil {
		return r.Err
	}
	r.Uploaded = append(r.Uploaded, messageIDs...)
	return nil
}
