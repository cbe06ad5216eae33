package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTH STATUS - Classification of a single ledger row
// =============================================================================

type MonthStatus string

const (
	MonthFullyPaid MonthStatus = "Fully Paid"
	MonthPartial   MonthStatus = "Partial"
	MonthUnpaid    MonthStatus = "Unpaid"
)

// Classify labels a month. The checks run in order:
//
//  1. FullyPaid: this month's charge is covered AND no arrears remain
//  2. Partial:   something was paid this month
//  3. Unpaid:    nothing was paid this month
//
// A month paid in full can still be Partial when earlier months left
// arrears. A month with no payment is Unpaid even when carried credit keeps
// the running balance at or below zero; the balance shows the credit.
func Classify(paid, expected, runningBalance decimal.Decimal) MonthStatus {
	switch {
	case paid.GreaterThanOrEqual(expected) && !runningBalance.IsPositive():
		return MonthFullyPaid
	case paid.IsPositive():
		return MonthPartial
	default:
		return MonthUnpaid
	}
}

// =============================================================================
// SUMMARY STATUS - Classification of a tenant summary
// =============================================================================

type SummaryStatus string

const (
	SummaryPaid    SummaryStatus = "Paid"
	SummaryPartial SummaryStatus = "Partial"
	SummaryUnpaid  SummaryStatus = "Unpaid"
)

// ParseSummaryStatus accepts the status names case-insensitively, as used by
// list-view filters.
func ParseSummaryStatus(s string) (SummaryStatus, error) {
	for _, st := range []SummaryStatus{SummaryPaid, SummaryPartial, SummaryUnpaid} {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", invalid("status", s, fmt.Sprintf("expected one of %s, %s, %s", SummaryPaid, SummaryPartial, SummaryUnpaid))
}

func classifySummary(totalPaid, balance decimal.Decimal) SummaryStatus {
	switch {
	case !balance.IsPositive():
		return SummaryPaid
	case totalPaid.IsPositive():
		return SummaryPartial
	default:
		return SummaryUnpaid
	}
}
