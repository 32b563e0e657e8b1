// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"time"
)

// TopUp is the transaction type for purchased credit. Every other type is spend.
const TopUp = "Top up"

// CreditTransaction is one entry in the user's credit ledger.
type CreditTransaction struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Amount   float64   `json:"amount"`
	Currency string    `json:"currency"`
	Created  Timestamp `json:"created_at"`
}

// CreatedAt implements Dated.
func (c CreditTransaction) CreatedAt() time.Time { return c.Created.Time }

// IsCredit reports whether the transaction added to the balance.
func (c CreditTransaction) IsCredit() bool { return c.Type == TopUp }

// SignedAmount returns the amount as a positive credit or negative debit.
func (c CreditTransaction) SignedAmount() float64 {
	if c.IsCredit() {
		return c.Amount
	}
	return -c.Amount
}

// CreditSummary maps a transaction type to the total amount for that type.
type CreditSummary map[string]float64

// SummaryPoint is one named value of a credit summary chart.
type SummaryPoint struct {
	Name   string
	Amount float64
}

// Series returns the spend categories sorted by name, leaving out top-ups.
func (s CreditSummary) Series() []SummaryPoint {
	out := make([]SummaryPoint, 0, len(s))
	for name, amount := range s {
		if name == TopUp {
			continue
		}
		out = append(out, SummaryPoint{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TotalSpend sums every non top-up category.
func (s CreditSummary) TotalSpend() float64 {
	var total float64
	for _, p := range s.Series() {
		total += p.Amount
	}
	return total
}
