// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package credittransfer

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/moov-io/sepa/pkg/model"
	"github.com/moov-io/sepa/pkg/schema"
	"github.com/moov-io/sepa/pkg/xmltree"

	"github.com/shopspring/decimal"
)

// ErrStructural is returned when an account or transaction lacks data the document
// can't be rendered without. No document is produced in that case.
var ErrStructural = errors.New("structural input failure")

const (
	paymentMethodTransfer = "TRF"
	chargeBearerShared    = "SLEV"
)

// Options control the identifiers and header values of an assembled document.
type Options struct {
	// MessageID is the group header's MsgId. A new one is generated when empty.
	MessageID string

	// CreatedAt is the group header's CreDtTm, the current time when zero.
	CreatedAt time.Time

	// Countries decides which creditor accounts are rendered as IBAN.
	// DefaultCountries is used when it's empty.
	Countries CountrySet

	// PaymentInformationID names the PmtInf block at index. The default is
	// "<MessageID>/<index+1>".
	PaymentInformationID func(messageID string, index int, group Group) string
}

func (opts Options) withDefaults() Options {
	if opts.MessageID == "" {
		opts.MessageID = NewMessageID(DefaultMessageIDPrefix)
	}
	if opts.CreatedAt.IsZero() {
		opts.CreatedAt = time.Now()
	}
	if opts.Countries.Empty() {
		opts.Countries = DefaultCountries
	}
	if opts.PaymentInformationID == nil {
		opts.PaymentInformationID = func(messageID string, index int, _ Group) string {
			return fmt.Sprintf("%s/%d", messageID, index+1)
		}
	}
	return opts
}

// Assemble renders account and txs as a CstmrCdtTrfInitn element for the given schema.
// Transactions are grouped into one PmtInf block per GroupKey.
//
// Schema compatibility isn't checked here, see Message.CompatibleWith.
func Assemble(account *model.Account, txs []*model.Transaction, desc schema.Descriptor, opts Options) (*xmltree.Node, error) {
	if err := checkStructure(account, txs); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	rootTag := desc.RootTag
	if rootTag == "" {
		rootTag = schema.RootTag
	}
	groups := GroupTransactions(txs)

	b := xmltree.NewBuilder()
	b.Element(rootTag, func() {
		buildGroupHeader(b, account, txs, opts)
		for i := range groups {
			buildPaymentInformation(b, account, i, groups[i], opts)
		}
	})
	return b.Root(), nil
}

func checkStructure(account *model.Account, txs []*model.Transaction) error {
	if account == nil {
		return fmt.Errorf("%w: missing account", ErrStructural)
	}
	if account.IBAN == "" {
		return fmt.Errorf("%w: account: missing iban", ErrStructural)
	}
	if account.Name == "" {
		return fmt.Errorf("%w: account: missing name", ErrStructural)
	}
	for i, tx := range txs {
		var missing string
		switch {
		case tx == nil:
			return fmt.Errorf("%w: transaction #%d is nil", ErrStructural, i)
		case tx.Amount.IsNegative():
			return fmt.Errorf("%w: transaction #%d: negative amount %s", ErrStructural, i, tx.Amount)
		case tx.Currency == "":
			missing = "currency"
		case tx.Reference == "":
			missing = "reference"
		case tx.IBAN == "":
			missing = "iban"
		case tx.Name == "":
			missing = "name"
		}
		if missing != "" {
			return fmt.Errorf("%w: transaction #%d: missing %s", ErrStructural, i, missing)
		}
	}
	return nil
}

// formatAmount rounds to two fraction digits with a '.' separator.
func formatAmount(amt decimal.Decimal) string {
	return amt.StringFixed(2)
}

func buildGroupHeader(b *xmltree.Builder, account *model.Account, txs []*model.Transaction, opts Options) {
	b.Element("GrpHdr", func() {
		b.Text("MsgId", opts.MessageID)
		b.Text("CreDtTm", opts.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
		b.Text("NbOfTxs", strconv.Itoa(len(txs)))
		b.Text("CtrlSum", formatAmount(sum(txs)))
		b.Element("InitgPty", func() {
			b.Text("Nm", account.Name)
		})
	})
}

func buildPaymentInformation(b *xmltree.Builder, account *model.Account, index int, group Group, opts Options) {
	key := group.Key
	b.Element("PmtInf", func() {
		b.Text("PmtInfId", opts.PaymentInformationID(opts.MessageID, index, group))
		b.Text("PmtMtd", paymentMethodTransfer)
		b.Text("BtchBookg", strconv.FormatBool(key.BatchBooking))
		b.Text("NbOfTxs", strconv.Itoa(len(group.Transactions)))
		b.Text("CtrlSum", formatAmount(group.ControlSum()))
		if key.ServiceLevel != "" || key.CategoryPurpose != "" {
			b.Element("PmtTpInf", func() {
				if key.ServiceLevel != "" {
					b.Element("SvcLvl", func() {
						b.Text("Cd", key.ServiceLevel)
					})
				}
				if key.CategoryPurpose != "" {
					b.Element("CtgyPurp", func() {
						b.Text("Cd", key.CategoryPurpose)
					})
				}
			})
		}
		b.Text("ReqdExctnDt", key.RequestedDate.String())
		b.Element("Dbtr", func() {
			b.Text("Nm", account.Name)
		})
		b.Element("DbtrAcct", func() {
			b.Element("Id", func() {
				b.Text("IBAN", account.IBAN)
			})
		})
		b.Element("DbtrAgt", func() {
			b.Element("FinInstnId", func() {
				if model.Present(account.BIC) {
					b.Text("BIC", *account.BIC)
				} else {
					b.Element("Othr", func() {
						b.Text("Id", model.NotProvided)
					})
				}
			})
		})
		if key.ServiceLevel != "" {
			b.Text("ChrgBr", chargeBearerShared)
		}
		for _, tx := range group.Transactions {
			buildTransaction(b, tx, opts.Countries.IsSEPA(tx.IBAN))
		}
	})
}

func buildTransaction(b *xmltree.Builder, tx *model.Transaction, sepa bool) {
	b.Element("CdtTrfTxInf", func() {
		b.Element("PmtId", func() {
			if model.Present(tx.Instruction) {
				b.Text("InstrId", *tx.Instruction)
			}
			b.Text("EndToEndId", tx.Reference)
		})
		b.Element("Amt", func() {
			b.Text("InstdAmt", formatAmount(tx.Amount), xmltree.Attr{Name: "Ccy", Value: tx.Currency})
		})
		if model.Present(tx.BIC) {
			b.Element("CdtrAgt", func() {
				b.Element("FinInstnId", func() {
					b.Text("BIC", *tx.BIC)
				})
			})
		}
		b.Element("Cdtr", func() {
			b.Text("Nm", tx.Name)
			if tx.CreditorAddress != nil {
				buildAddress(b, tx.CreditorAddress)
			}
		})
		b.Element("CdtrAcct", func() {
			b.Element("Id", func() {
				if sepa {
					b.Text("IBAN", tx.IBAN)
				} else {
					b.Element("Othr", func() {
						b.Text("Id", tx.IBAN)
					})
				}
			})
		})
		if model.Present(tx.RemittanceInformation) {
			b.Element("RmtInf", func() {
				b.Text("Ustrd", *tx.RemittanceInformation)
			})
		}
	})
}

func buildAddress(b *xmltree.Builder, addr *model.Address) {
	fields := []struct {
		tag   string
		value *string
	}{
		{"StrtNm", addr.StreetName},
		{"BldgNb", addr.BuildingNumber},
		{"PstCd", addr.PostCode},
		{"TwnNm", addr.TownName},
		{"Ctry", addr.CountryCode},
		{"AdrLine", addr.AddressLine1},
		{"AdrLine", addr.AddressLine2},
	}
	b.Element("PstlAdr", func() {
		for _, f := range fields {
			if model.Present(f.value) {
				b.Text(f.tag, *f.value)
			}
		}
	})
}
