// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package messages

import (
	"time"
)

type Status string

const (
	// Pending messages are rendered and stored, waiting for the next cutoff to be uploaded.
	Pending Status = "pending"

	// Uploaded messages have been delivered to the bank.
	Uploaded Status = "uploaded"

	// Canceled messages were deleted before they were uploaded.
	Canceled Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case Pending, Uploaded, Canceled:
		return true
	}
	return false
}

// Message is a rendered pain.001 document along with the summary shown to callers.
type Message struct {
	MessageID            string     `json:"messageID"`
	Schema               string     `json:"schema"`
	Status               Status     `json:"status"`
	DebtorName           string     `json:"debtorName"`
	DebtorIBAN           string     `json:"debtorIBAN"`
	NumberOfTransactions int        `json:"numberOfTransactions"`
	ControlSum           string     `json:"controlSum"`
	CreatedAt            time.Time  `json:"createdAt"`
	UploadedAt           *time.Time `json:"uploadedAt,omitempty"`

	Document []byte `json:"-"`
}
