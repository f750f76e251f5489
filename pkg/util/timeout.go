// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package util

import (
	"errors"
	"time"
)

var (
	ErrTimeout = errors.New("timeout exceeded")
)

// Timeout calls f and waits at most d for it to return. On ErrTimeout f keeps
// running in the background and its result is discarded.
func Timeout(f func() error, d time.Duration) error {
	answer := make(chan error, 1)
	go func() {
		answer <- f()
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-answer:
		return err
	case <-timer.C:
		return ErrTimeout
	}
}
