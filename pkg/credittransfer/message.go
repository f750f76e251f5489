// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package credittransfer

import (
	"fmt"
	"time"

	"github.com/moov-io/sepa/pkg/model"
	"github.com/moov-io/sepa/pkg/schema"
	"github.com/moov-io/sepa/pkg/validator"
	"github.com/moov-io/sepa/pkg/xmltree"

	"cloud.google.com/go/civil"
	"github.com/moov-io/base"
	"github.com/shopspring/decimal"
)

const (
	// DefaultMessageIDPrefix starts every generated message identification.
	DefaultMessageIDPrefix = "MOOV"

	maxMessageIDLength = 35
)

// NewMessageID returns "<prefix>/<random>" shortened to 35 characters.
func NewMessageID(prefix string) string {
	id := fmt.Sprintf("%s/%s", prefix, base.ID()[:20])
	if len(id) > maxMessageIDLength {
		id = id[:maxMessageIDLength]
	}
	return id
}

// Message is a credit transfer initiation: one debtor account paying any number of
// creditors.
type Message struct {
	ID           string
	CreatedAt    time.Time
	Account      model.Account
	Transactions []*model.Transaction
}

func NewMessage(account model.Account) *Message {
	return &Message{
		ID:        NewMessageID(DefaultMessageIDPrefix),
		CreatedAt: time.Now(),
		Account:   account,
	}
}

// Field implements validator.Record
func (m *Message) Field(name string) (*string, bool) {
	if name == "message_identification" {
		return &m.ID, true
	}
	return nil, false
}

// AddTransaction applies defaults to tx and appends it when it's valid.
func (m *Message) AddTransaction(tx *model.Transaction) error {
	tx.SetDefaults()
	if err := tx.Validate(); err != nil {
		return err
	}
	m.Transactions = append(m.Transactions, tx)
	return nil
}

// Validate checks the message identification, the account and every transaction,
// returning validator.Errors with fields prefixed by "account." and "transactions[i].".
func (m *Message) Validate() error {
	return m.ValidateOn(civil.DateOf(time.Now()))
}

// ValidateOn is Validate with transaction dates checked against today.
func (m *Message) ValidateOn(today civil.Date) error {
	errs, err := validator.ValidateAll(m, validator.MandateIdentifier(validator.FieldName("message_identification")))
	if err != nil {
		return err
	}
	if len(m.Transactions) == 0 {
		errs.Add("transactions", "must not be empty")
	}
	if err := collect(&errs, "account", m.Account.Validate()); err != nil {
		return err
	}
	for i, tx := range m.Transactions {
		if err := collect(&errs, fmt.Sprintf("transactions[%d]", i), tx.ValidateOn(today)); err != nil {
			return err
		}
	}
	return errs.Err()
}

// collect merges field errors into errs and returns any other error.
func collect(errs *validator.Errors, prefix string, err error) error {
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.Errors); ok {
		errs.Merge(prefix, fieldErrs)
		return nil
	}
	return err
}

// AmountTotal is the exact sum of every transaction amount.
func (m *Message) AmountTotal() decimal.Decimal {
	return sum(m.Transactions)
}

// CompatibleWith returns an error wrapping schema.ErrIncompatible when the account or a
// transaction can't be expressed in the given schema version.
func (m *Message) CompatibleWith(desc schema.Descriptor) error {
	if err := desc.CheckAccount(model.Present(m.Account.BIC)); err != nil {
		return err
	}
	for i, tx := range m.Transactions {
		serviceLevel := ""
		if model.Present(tx.ServiceLevel) {
			serviceLevel = *tx.ServiceLevel
		}
		if err := desc.CheckTransaction(tx.Currency, serviceLevel, model.Present(tx.BIC)); err != nil {
			return fmt.Errorf("transaction #%d: %w", i, err)
		}
	}
	return nil
}

func (m *Message) options(countries CountrySet) Options {
	return Options{
		MessageID: m.ID,
		CreatedAt: m.CreatedAt,
		Countries: countries,
	}
}

// Document assembles the message inside a Document element carrying the schema's
// namespace declarations.
func (m *Message) Document(desc schema.Descriptor, countries CountrySet) (*xmltree.Node, error) {
	body, err := Assemble(&m.Account, m.Transactions, desc, m.options(countries))
	if err != nil {
		return nil, err
	}
	return &xmltree.Node{
		Name: "Document",
		Attrs: []xmltree.Attr{
			{Name: "xmlns", Value: desc.Namespace},
			{Name: "xmlns:xsi", Value: schema.XSINamespace},
			{Name: "xsi:schemaLocation", Value: desc.SchemaLocation},
		},
		Children: []*xmltree.Node{body},
	}, nil
}

// ToXML checks schema compatibility and renders the message as an indented XML document.
func (m *Message) ToXML(desc schema.Descriptor, countries CountrySet) ([]byte, error) {
	if err := m.CompatibleWith(desc); err != nil {
		return nil, err
	}
	doc, err := m.Document(desc, countries)
	if err != nil {
		return nil, err
	}
	return xmltree.Document(doc, "  ")
}
