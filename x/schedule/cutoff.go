// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/robfig/cron/v3"
)

// CutoffTimes is a time.Ticker which fires on TARGET2 business days to trigger
// delivery of pending messages.
type CutoffTimes struct {
	C chan time.Time

	sched *cron.Cron
}

// ForCutoffs creates CutoffTimes from the upload configuration.
func ForCutoffs(cfg config.Cutoffs) (*CutoffTimes, error) {
	return ForCutoffTimes(cfg.Timezone, cfg.Windows)
}

func ForCutoffTimes(tz string, timestamps []string) (*CutoffTimes, error) {
	ct := &CutoffTimes{
		C:     make(chan time.Time, 1),
		sched: cron.New(),
	}
	if err := ct.registerCutoffs(tz, timestamps); err != nil {
		return nil, err
	}
	ct.sched.Start()
	return ct, nil
}

// Stop halts future ticks. C is left open so readers never see a zero time.
func (ct *CutoffTimes) Stop() {
	if ct == nil || ct.sched == nil {
		return
	}
	<-ct.sched.Stop().Done()
}

func (ct *CutoffTimes) maybeTick(location *time.Location) {
	now := time.Now().In(location)
	if !IsBusinessDay(now) {
		return
	}
	// A tick is already pending when nobody has read C, so this one is dropped.
	select {
	case ct.C <- now:
	default:
	}
}

func (ct *CutoffTimes) registerCutoffs(tz string, timestamps []string) error {
	if len(timestamps) == 0 {
		return errors.New("missing cutoff times")
	}
	location := time.UTC
	zone := ""
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("timezone=%s error=%v", tz, err)
		}
		location = l
		zone = fmt.Sprintf("CRON_TZ=%s ", tz)
	}
	for i := range timestamps {
		when, err := time.Parse("15:04", timestamps[i])
		if err != nil {
			return fmt.Errorf("failed to parse '%s' error=%v", timestamps[i], err)
		}
		schedule := fmt.Sprintf(`%s%d %d * * *`, zone, when.Minute(), when.Hour())
		if _, err := ct.sched.AddFunc(schedule, func() { ct.maybeTick(location) }); err != nil {
			return fmt.Errorf("timestamp=%s error=%v", timestamps[i], err)
		}
	}
	return nil
}
