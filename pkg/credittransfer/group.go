// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package credittransfer

import (
	"github.com/moov-io/sepa/pkg/model"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// GroupKey holds the execution semantics transactions must share to be placed in the
// same payment information block. Absent optional values are empty strings.
type GroupKey struct {
	RequestedDate   civil.Date
	BatchBooking    bool
	ServiceLevel    string
	CategoryPurpose string
}

// KeyOf returns the GroupKey of a transaction.
func KeyOf(tx *model.Transaction) GroupKey {
	key := GroupKey{
		RequestedDate: tx.RequestedDate,
		BatchBooking:  tx.BatchBooking,
	}
	if model.Present(tx.ServiceLevel) {
		key.ServiceLevel = *tx.ServiceLevel
	}
	if model.Present(tx.CategoryPurpose) {
		key.CategoryPurpose = *tx.CategoryPurpose
	}
	return key
}

// Group is a set of transactions sharing one GroupKey, kept in input order.
type Group struct {
	Key          GroupKey
	Transactions []*model.Transaction
}

// ControlSum is the exact sum of the group's amounts.
func (g Group) ControlSum() decimal.Decimal {
	return sum(g.Transactions)
}

func sum(txs []*model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		total = total.Add(txs[i].Amount)
	}
	return total
}

// GroupTransactions partitions txs by GroupKey. Groups are ordered by the first
// occurrence of their key and transactions keep their relative input order.
func GroupTransactions(txs []*model.Transaction) []Group {
	var groups []Group
	index := make(map[GroupKey]int)
	for _, tx := range txs {
		key := KeyOf(tx)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}
