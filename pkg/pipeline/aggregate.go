// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/moov-io/sepa/pkg/config"
	"github.com/moov-io/sepa/pkg/messages"
	"github.com/moov-io/sepa/pkg/pipeline/audittrail"
	"github.com/moov-io/sepa/pkg/pipeline/notify"
	"github.com/moov-io/sepa/pkg/pipeline/output"
	"github.com/moov-io/sepa/pkg/pipeline/transform"
	"github.com/moov-io/sepa/pkg/upload"
	"github.com/moov-io/sepa/x/schedule"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"gocloud.dev/pubsub"
)

var (
	messagesUploaded = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "pipeline_messages_uploaded",
		Help: "Counter of pain.001 messages uploaded at cutoff",
	}, []string{"status"})
)

// Aggregator consumes messages from the stream, stages them on disk and on
// each cutoff uploads every staged message to the bank.
type Aggregator struct {
	logger log.Logger

	agent upload.Agent
	repo  messages.Repository

	staging      Staging
	subscription *pubsub.Subscription

	preuploadTransformers []transform.PreUpload
	outputFormatter       output.Formatter
	filenameTemplate      string

	auditStorage audittrail.Storage
	notifier     notify.Sender

	cutoffTrigger chan manuallyTriggeredCutoff
}

func NewAggregator(logger log.Logger, cfg *config.Config, agent upload.Agent, repo messages.Repository, sub *pubsub.Subscription) (*Aggregator, error) {
	if cfg == nil {
		return nil, errors.New("nil Config")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	staging, err := newFilesystemStaging(cfg.Pipeline.Staging.Dir())
	if err != nil {
		return nil, err
	}
	transformers, err := transform.Multi(logger, cfg.Pipeline.PreUpload)
	if err != nil {
		return nil, fmt.Errorf("pre-upload: %v", err)
	}
	formatter, err := output.NewFormatter(cfg.Pipeline.Output)
	if err != nil {
		return nil, err
	}
	auditStorage, err := audittrail.NewStorage(cfg.Pipeline.AuditTrail)
	if err != nil {
		return nil, fmt.Errorf("audit-trail: %v", err)
	}
	notifier, err := notify.NewMultiSender(logger, cfg.Pipeline.Notifications)
	if err != nil {
		return nil, fmt.Errorf("notifications: %v", err)
	}

	return &Aggregator{
		logger:                logger,
		agent:                 agent,
		repo:                  repo,
		staging:               staging,
		subscription:          sub,
		preuploadTransformers: transformers,
		outputFormatter:       formatter,
		filenameTemplate:      upload.FilenameTemplate(cfg.Upload),
		auditStorage:          auditStorage,
		notifier:              notifier,
		cutoffTrigger:         make(chan manuallyTriggeredCutoff, 1),
	}, nil
}

// Start blocks until ctx is canceled, staging each received message and uploading
// them on every cutoff. A nil cutoffs only uploads on manual triggers.
func (agg *Aggregator) Start(ctx context.Context, cutoffs *schedule.CutoffTimes) {
	var ticks <-chan time.Time
	if cutoffs != nil {
		ticks = cutoffs.C
	}

	received, receiveErrs := agg.receive(ctx)
	for {
		select {
		case tt := <-ticks:
			agg.logger.Log("aggregate", fmt.Sprintf("starting cutoff upload at %v", tt.Format(time.RFC3339)))
			if err := agg.runCutoff(); err != nil {
				agg.logger.Log("aggregate", fmt.Sprintf("ERROR during cutoff: %v", err))
			}

		case waiter := <-agg.cutoffTrigger:
			agg.logger.Log("aggregate", "starting manual cutoff upload")
			waiter.C <- agg.runCutoff()

		case msg := <-received:
			if err := handleMessage(agg.staging, msg); err != nil {
				agg.logger.Log("aggregate", fmt.Sprintf("ERROR handling message: %v", err))
			}

		case err := <-receiveErrs:
			agg.logger.Log("aggregate", fmt.Sprintf("ERROR receiving message: %v", err))
			receiveErrs = nil

		case <-ctx.Done():
			agg.logger.Log("aggregate", "shutting down")
			return
		}
	}
}

func (agg *Aggregator) receive(ctx context.Context) (chan *pubsub.Message, chan error) {
	out, errs := make(chan *pubsub.Message), make(chan error, 1)
	if agg.subscription == nil {
		return out, errs
	}
	go func() {
		for {
			msg, err := agg.subscription.Receive(ctx)
			if err != nil {
				if ctx.Err() == nil {
					errs <- err
				}
				return
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errs
}

// handleMessage attempts to parse a pubsub.Message into an Event and stage it.
func handleMessage(staging Staging, msg *pubsub.Message) error {
	ev, err := decodeEvent(msg)
	if err != nil {
		nack(msg)
		return err
	}
	switch ev.Kind {
	case KindUpload:
		err = staging.HandleUpload(ev)
	case KindCancel:
		err = staging.HandleCancel(ev.MessageID)
	}
	if err != nil {
		nack(msg)
		return fmt.Errorf("%s of messageID=%s: %v", ev.Kind, ev.MessageID, err)
	}
	msg.Ack()
	return nil
}

func nack(msg *pubsub.Message) {
	if msg.Nackable() {
		msg.Nack()
	} else {
		msg.Ack()
	}
}

func (agg *Aggregator) runCutoff() error {
	return agg.staging.WithEachStaged(agg.uploadMessage)
}

func (agg *Aggregator) uploadMessage(ev *Event) error {
	current, err := agg.repo.GetMessage(ev.MessageID)
	if err != nil {
		return fmt.Errorf("reading message: %v", err)
	}
	if current == nil || current.Status != messages.Pending {
		agg.logger.Log("aggregate", fmt.Sprintf("skipping messageID=%s which is no longer pending", ev.MessageID))
		return errSkipUpload
	}

	filename, err := agg.deliver(ev)
	agg.notifyAfterUpload(ev, filename, err)
	if err != nil {
		messagesUploaded.With("status", "failed").Add(1)
		return err
	}
	messagesUploaded.With("status", "uploaded").Add(1)

	if err := agg.repo.MarkUploaded([]string{ev.MessageID}, time.Now()); err != nil {
		return fmt.Errorf("marking uploaded: %v", err)
	}
	agg.logger.Log("aggregate", fmt.Sprintf("uploaded messageID=%s as %s", ev.MessageID, filename))
	return nil
}

func (agg *Aggregator) deliver(ev *Event) (string, error) {
	res, err := transform.ForUpload(ev.Document, agg.preuploadTransformers)
	if err != nil {
		return "", fmt.Errorf("transform: %v", err)
	}

	var buf bytes.Buffer
	if err := agg.outputFormatter.Format(&buf, res); err != nil {
		return "", fmt.Errorf("output: %v", err)
	}

	filename, err := upload.RenderFilename(agg.filenameTemplate, upload.FilenameData{
		MessageID: ev.MessageID,
		Schema:    ev.Message.Schema,
		GPG:       len(res.Encrypted) > 0,
	})
	if err != nil {
		return "", fmt.Errorf("filename: %v", err)
	}

	if err := agg.auditStorage.SaveFile(filename, ev.Document); err != nil {
		return filename, fmt.Errorf("audit-trail: %v", err)
	}

	err = agg.agent.UploadFile(upload.File{
		Filename: filename,
		Contents: ioutil.NopCloser(&buf),
	})
	if err != nil {
		return filename, fmt.Errorf("upload: %v", err)
	}
	return filename, nil
}

func (agg *Aggregator) notifyAfterUpload(ev *Event, filename string, uploadErr error) {
	msg := &notify.Message{
		Direction: notify.Upload,
		Filename:  filename,
		Hostname:  agg.agent.Hostname(),
		MessageID: ev.MessageID,
	}
	if ev.Message != nil {
		msg.NumberOfTransactions = ev.Message.NumberOfTransactions
		msg.ControlSum = ev.Message.ControlSum
	}

	if uploadErr != nil {
		if err := agg.notifier.Critical(msg); err != nil {
			agg.logger.Log("aggregate", fmt.Sprintf("problem sending critical notification for messageID=%s: %v", ev.MessageID, err))
		}
	} else {
		if err := agg.notifier.Info(msg); err != nil {
			agg.logger.Log("aggregate", fmt.Sprintf("problem sending info notification for messageID=%s: %v", ev.MessageID, err))
		}
	}
}

func (agg *Aggregator) Shutdown() {
	if agg == nil {
		return
	}
	if agg.auditStorage != nil {
		if err := agg.auditStorage.Close(); err != nil {
			agg.logger.Log("aggregate", fmt.Sprintf("problem closing audit storage: %v", err))
		}
	}
	if agg.subscription != nil {
		if err := agg.subscription.Shutdown(context.Background()); err != nil {
			agg.logger.Log("aggregate", fmt.Sprintf("problem shutting down subscription: %v", err))
		}
	}
}
