// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

import (
	"sync"
)

type MockSender struct {
	Err error

	mu             sync.Mutex
	infoCalled     bool
	criticalCalled bool
	msg            *Message
}

func (s *MockSender) Info(msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.infoCalled = true
	s.msg = msg
	return s.Err
}

func (s *MockSender) Critical(msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.criticalCalled = true
	s.msg = msg
	return s.Err
}

func (s *MockSender) InfoWasCalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoCalled
}

func (s *MockSender) CriticalWasCalled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criticalCalled
}

func (s *MockSender) CapturedMessage() *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}
