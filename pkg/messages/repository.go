// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package messages

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotPending is returned when a message can't change because it already left the pending state.
var ErrNotPending = errors.New("message is not pending")

type ListParams struct {
	Status Status
	Count  int
}

const (
	defaultListCount = 100
	maxListCount     = 1000
)

type Repository interface {
	GetMessage(messageID string) (*Message, error)
	ListMessages(params ListParams) ([]*Message, error)
	SaveMessage(msg *Message) error
	DeleteMessage(messageID string) error
	MarkUploaded(messageIDs []string, when time.Time) error
}

func NewRepo(db *sql.DB) Repository {
	return &sqlRepo{db: db}
}

type sqlRepo struct {
	db *sql.DB
}

func (r *sqlRepo) GetMessage(messageID string) (*Message, error) {
	query := `select message_id, schema_name, status, debtor_name, debtor_iban, number_of_transactions, control_sum, created_at, uploaded_at, document
from messages
where message_id = ? and deleted_at is null
limit 1`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	msg, err := scanMessage(stmt.QueryRow(messageID), true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return msg, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row scanner, withDocument bool) (*Message, error) {
	msg := &Message{}
	dest := []interface{}{
		&msg.MessageID,
		&msg.Schema,
		&msg.Status,
		&msg.DebtorName,
		&msg.DebtorIBAN,
		&msg.NumberOfTransactions,
		&msg.ControlSum,
		&msg.CreatedAt,
		&msg.UploadedAt,
	}
	if withDocument {
		dest = append(dest, &msg.Document)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *sqlRepo) ListMessages(params ListParams) ([]*Message, error) {
	if params.Count <= 0 {
		params.Count = defaultListCount
	}
	if params.Count > maxListCount {
		params.Count = maxListCount
	}

	query := `select message_id, schema_name, status, debtor_name, debtor_iban, number_of_transactions, control_sum, created_at, uploaded_at
from messages where deleted_at is null`
	var args []interface{}
	if params.Status != "" {
		query += ` and status = ?`
		args = append(args, params.Status)
	}
	query += ` order by created_at desc limit ?`
	args = append(args, params.Count)

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		msg, err := scanMessage(rows, false)
		if err != nil {
			return nil, fmt.Errorf("list messages: %v", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func (r *sqlRepo) SaveMessage(msg *Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	query := `insert into messages (message_id, schema_name, status, debtor_name, debtor_iban, number_of_transactions, control_sum, document, created_at) values (?, ?, ?, ?, ?, ?, ?, ?, ?);`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		msg.MessageID,
		msg.Schema,
		msg.Status,
		msg.DebtorName,
		msg.DebtorIBAN,
		msg.NumberOfTransactions,
		msg.ControlSum,
		msg.Document,
		msg.CreatedAt,
	)
	return err
}

// DeleteMessage cancels a pending message. Messages in any other state return ErrNotPending.
// Canceled messages stay readable and are listed with status=canceled.
func (r *sqlRepo) DeleteMessage(messageID string) error {
	query := `update messages set status = ? where message_id = ? and status = ? and deleted_at is null;`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(Canceled, messageID, Pending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *sqlRepo) MarkUploaded(messageIDs []string, when time.Time) error {
	if len(messageIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`update messages set status = ?, uploaded_at = ? where status = ? and deleted_at is null and message_id in (?%s);`,
		strings.Repeat(", ?", len(messageIDs)-1))
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := []interface{}{Uploaded, when, Pending}
	for i := range messageIDs {
		args = append(args, messageIDs[i])
	}
	_, err = stmt.Exec(args...)
	return err
}
