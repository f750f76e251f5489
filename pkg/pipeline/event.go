// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moov-io/sepa/pkg/messages"

	"gocloud.dev/pubsub"
)

type Kind string

const (
	KindUpload Kind = "upload"
	KindCancel Kind = "cancel"
)

// Event is the body of each message sent over the stream. Upload events carry
// the rendered document, cancel events only the messageID.
type Event struct {
	Kind      Kind              `json:"kind"`
	MessageID string            `json:"messageID"`
	Message   *messages.Message `json:"message,omitempty"`
	Document  []byte            `json:"document,omitempty"`
}

func (ev *Event) validate() error {
	if ev.MessageID == "" {
		return errors.New("missing messageID")
	}
	switch ev.Kind {
	case KindUpload:
		if ev.Message == nil || len(ev.Document) == 0 {
			return fmt.Errorf("upload of %s is missing message or document", ev.MessageID)
		}
	case KindCancel:
	default:
		return fmt.Errorf("unknown kind %q", ev.Kind)
	}
	return nil
}

func createMetadata(ev *Event) map[string]string {
	return map[string]string{
		"messageID": ev.MessageID,
		"kind":      string(ev.Kind),
	}
}

func createBody(ev *Event) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(ev); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEvent(msg *pubsub.Message) (*Event, error) {
	var ev Event
	if err := json.NewDecoder(bytes.NewReader(msg.Body)).Decode(&ev); err != nil {
		return nil, fmt.Errorf("problem decoding messageID=%s: %v", msg.Metadata["messageID"], err)
	}
	if err := ev.validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
