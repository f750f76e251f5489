// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package notify

type Direction string

const (
	Upload Direction = "upload"
)

// Message describes a pain.001 document which was (or failed to be) delivered.
type Message struct {
	Direction Direction
	Filename  string
	Hostname  string

	MessageID            string
	NumberOfTransactions int
	ControlSum           string
}

type Sender interface {
	Info(msg *Message) error
	Critical(msg *Message) error
}
