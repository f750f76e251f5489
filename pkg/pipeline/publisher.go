// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/moov-io/sepa/pkg/config"
	"github.com/moov-io/sepa/pkg/messages"
	"github.com/moov-io/sepa/pkg/stream"

	"gocloud.dev/pubsub"
)

var (
	// DefaultStream is used when no stream is configured, so a single instance
	// can stage and upload its own messages.
	DefaultStream = &config.StreamPipeline{
		InMem: &config.InMemPipeline{
			URL: "mem://sepa-messages",
		},
	}
)

// Publisher pushes rendered messages onto a stream (kafka or inmem) where an
// Aggregator stages them for the next cutoff.
type Publisher interface {
	messages.Publisher

	Shutdown(ctx context.Context) error
}

func NewPublisher(ctx context.Context, cfg config.Pipeline) (Publisher, error) {
	topic, err := stream.OpenTopic(ctx, streamConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("publisher: %v", err)
	}
	return &streamPublisher{topic: topic}, nil
}

// NewSubscription opens the receiving side of the stream Publisher writes to.
// The Publisher must be created first when using an inmem stream.
func NewSubscription(ctx context.Context, cfg config.Pipeline) (*pubsub.Subscription, error) {
	sub, err := stream.OpenSubscription(ctx, streamConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("subscription: %v", err)
	}
	return sub, nil
}

func streamConfig(cfg config.Pipeline) *config.StreamPipeline {
	if cfg.Stream == nil {
		return DefaultStream
	}
	return cfg.Stream
}

type streamPublisher struct {
	topic *pubsub.Topic
}

func (pub *streamPublisher) Upload(msg *messages.Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	return pub.send(&Event{
		Kind:      KindUpload,
		MessageID: msg.MessageID,
		Message:   msg,
		Document:  msg.Document,
	})
}

func (pub *streamPublisher) Cancel(messageID string) error {
	return pub.send(&Event{
		Kind:      KindCancel,
		MessageID: messageID,
	})
}

func (pub *streamPublisher) send(ev *Event) error {
	if err := ev.validate(); err != nil {
		return err
	}
	body, err := createBody(ev)
	if err != nil {
		return err
	}
	return pub.topic.Send(context.Background(), &pubsub.Message{
		Body:     body,
		Metadata: createMetadata(ev),
	})
}

func (pub *streamPublisher) Shutdown(ctx context.Context) error {
	if pub == nil || pub.topic == nil {
		return nil
	}
	return pub.topic.Shutdown(ctx)
}
