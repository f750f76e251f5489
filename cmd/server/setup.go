// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/moov-io/base/admin"
	"github.com/moov-io/sepa/pkg/config"
	"github.com/moov-io/sepa/pkg/messages"
	"github.com/moov-io/sepa/pkg/pipeline"
	"github.com/moov-io/sepa/pkg/pipeline/notify"
	"github.com/moov-io/sepa/pkg/upload"
	"github.com/moov-io/sepa/pkg/util"
	"github.com/moov-io/sepa/x/schedule"

	"github.com/go-kit/kit/log"
	"github.com/joho/godotenv"
)

// loadEnvFile reads KEY=value lines from path into the environment. Variables
// which are already set are not overwritten and a missing file is ignored.
func loadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		panic(fmt.Sprintf("problem reading %s: %v", path, err))
	}
}

func readConfig(path string) *config.Config {
	cfg, err := config.FromFile(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if err := validateTemplate(cfg.Upload); err != nil {
		panic(fmt.Sprintf("ERROR: problem validating outbound filename template: %v", err))
	}
	return cfg
}

// validateTemplate renders the outbound filename template with sample data.
func validateTemplate(cfg *config.Upload) error {
	filename, err := upload.RenderFilename(upload.FilenameTemplate(cfg), upload.FilenameData{
		MessageID: "MOOV/2020-06-30/1",
		Schema:    "pain.001.001.03",
	})
	if err != nil {
		return err
	}
	if filename == "" {
		return errors.New("empty filename rendered")
	}
	return nil
}

// setupPipeline starts the aggregator which uploads staged messages at each cutoff. Without
// an upload config messages are only published and stored.
func setupPipeline(ctx context.Context, cfg *config.Config, svc *admin.Server, repo messages.Repository) func() {
	if cfg.Upload == nil {
		cfg.Logger.Log("pipeline", "no upload config found, messages will not be uploaded")
		return func() {}
	}

	agent, err := upload.New(cfg.Logger, cfg.Upload)
	if err != nil {
		panic(fmt.Sprintf("ERROR creating upload agent: %v", err))
	}
	svc.AddLivenessCheck("upload-agent", func() error {
		return util.Timeout(agent.Ping, 10*time.Second)
	})
	setupPagerDutyCheck(cfg.Logger, svc, cfg.Pipeline.Notifications)

	sub, err := pipeline.NewSubscription(ctx, cfg.Pipeline)
	if err != nil {
		panic(fmt.Sprintf("ERROR creating pipeline subscription: %v", err))
	}

	aggregator, err := pipeline.NewAggregator(cfg.Logger, cfg, agent, repo, sub)
	if err != nil {
		panic(fmt.Sprintf("ERROR creating aggregator: %v", err))
	}
	aggregator.RegisterRoutes(svc)

	cutoffs, err := schedule.ForCutoffs(cfg.Upload.Cutoffs)
	if err != nil {
		panic(fmt.Sprintf("ERROR creating cutoff schedule: %v", err))
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		aggregator.Start(ctx, cutoffs)
		close(done)
	}()

	return func() {
		cancel()
		<-done
		cutoffs.Stop()
		aggregator.Shutdown()
		if err := agent.Close(); err != nil {
			cfg.Logger.Log("pipeline", fmt.Sprintf("problem closing upload agent: %v", err))
		}
	}
}

func setupPagerDutyCheck(logger log.Logger, svc *admin.Server, cfg *config.PipelineNotifications) {
	if cfg == nil || cfg.PagerDuty == nil {
		return
	}
	pd, err := notify.NewPagerDuty(cfg.PagerDuty)
	if err != nil {
		logger.Log("pipeline", fmt.Sprintf("problem creating pagerduty check: %v", err))
		return
	}
	svc.AddLivenessCheck("pagerduty", pd.Ping)
}
