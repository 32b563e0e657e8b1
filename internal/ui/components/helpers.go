// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"math"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// fmtNumber formats a number with thousand separators.
func fmtNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatAmount renders a money amount with grouping and two decimals,
// prefixed by the currency symbol or code as the backend sends it.
func FormatAmount(currency string, amount float64) string {
	return currency + printer.Sprintf("%.2f", amount)
}

// FormatSignedAmount renders a ledger amount: "+" for credit and "-" for
// debit, followed by the currency and the absolute amount.
func FormatSignedAmount(currency string, amount float64, credit bool) string {
	sign := "-"
	if credit {
		sign = "+"
	}
	return sign + FormatAmount(currency, math.Abs(amount))
}

// fmtPercent formats a percentage with one decimal place.
func fmtPercent(p float64) string {
	return printer.Sprintf("%.1f%%", p)
}

// TitleCase capitalizes each word, e.g. "top up" -> "Top Up".
func TitleCase(s string) string {
	return titler.String(s)
}

// FormatDate renders a date the way the activity table shows it
// (day/month/year).
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006")
}

// FormatTime renders a message timestamp: time only for today, date and
// time otherwise.
func FormatTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Local().Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("15:04")
	}
	return t.Format("02 Jan 15:04")
}
