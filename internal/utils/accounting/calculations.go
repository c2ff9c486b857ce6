package accounting

import (
	"fmt"
	"time"

	"github.com/finbooks/finbooks_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// minorUnits maps ISO currency codes to their minor-unit exponent where it
// differs from the default of 2.
var minorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
}

// MinorUnitExponent returns the number of decimal places for a currency.
func MinorUnitExponent(currencyCode string) int32 {
	if exp, ok := minorUnits[currencyCode]; ok {
		return exp
	}
	return 2
}

// RoundMinor rounds an amount to the currency's minor-unit precision.
// All intermediate arithmetic stays exact; rounding happens only at output
// boundaries so stored totals never drift from the sum of their parts.
func RoundMinor(amount decimal.Decimal, currencyCode string) decimal.Decimal {
	return amount.Round(MinorUnitExponent(currencyCode))
}

// ComputeLineAmount derives one line item's amount: quantity times unit
// price, less the line's own discount percentage.
func ComputeLineAmount(item domain.LineItem) decimal.Decimal {
	amount := item.Quantity.Mul(item.UnitPrice)
	if item.DiscountPercent.IsPositive() {
		amount = amount.Sub(amount.Mul(item.DiscountPercent).Div(decimal.NewFromInt(100)))
	}
	return amount
}

// ComputeTotals derives a document's monetary totals from its line items and
// billing adjustments. It is a pure function: the caller's slices are updated
// with derived per-line amounts and the resulting totals are returned.
//
// A non-negative adjustment value accumulates into the tax total; a negative
// one accumulates, as its absolute value, into the discount total.
func ComputeTotals(items []domain.LineItem, adjustments []domain.BillingAdjustment, amountPaid decimal.Decimal, currencyCode string) domain.DocumentTotals {
	subtotal := decimal.Zero
	for i := range items {
		items[i].Amount = RoundMinor(ComputeLineAmount(items[i]), currencyCode)
		subtotal = subtotal.Add(items[i].Amount)
	}

	taxTotal := decimal.Zero
	discountTotal := decimal.Zero
	for i := range adjustments {
		var amount decimal.Decimal
		if adjustments[i].Type == domain.AdjustmentPercentage {
			amount = subtotal.Mul(adjustments[i].Value).Div(decimal.NewFromInt(100))
		} else {
			amount = adjustments[i].Value
		}
		amount = RoundMinor(amount, currencyCode)
		if amount.IsNegative() {
			discountTotal = discountTotal.Add(amount.Abs())
			adjustments[i].Amount = amount.Abs()
		} else {
			taxTotal = taxTotal.Add(amount)
			adjustments[i].Amount = amount
		}
	}

	total := subtotal.Add(taxTotal).Sub(discountTotal)
	due := total.Sub(amountPaid)
	if due.IsNegative() {
		due = decimal.Zero
	}

	return domain.DocumentTotals{
		Subtotal:      subtotal,
		TaxTotal:      taxTotal,
		DiscountTotal: discountTotal,
		Total:         total,
		AmountPaid:    amountPaid,
		AmountDue:     due,
	}
}

// AmountDueAfter returns the due amount after an additional paid amount,
// floored at zero.
func AmountDueAfter(total, amountPaid decimal.Decimal) decimal.Decimal {
	due := total.Sub(amountPaid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// AllocationOutcome is the document state that results from applying one
// payment allocation.
type AllocationOutcome struct {
	AmountPaid decimal.Decimal
	AmountDue  decimal.Decimal
	Status     domain.DocumentStatus
	SettledAt  *time.Time
}

// ApplyAllocation computes a document's paid and due amounts and its status
// after one allocation. A positive amount pays the document down, settling it
// and stamping settledAt when the due amount hits zero. A negative amount
// restores a previously applied payment and reopens the document when it was
// settled and the due amount becomes positive again.
func ApplyAllocation(doc domain.FinancialDocument, amount decimal.Decimal, now time.Time) AllocationOutcome {
	newPaid := doc.AmountPaid.Add(amount)
	out := AllocationOutcome{
		AmountPaid: newPaid,
		AmountDue:  AmountDueAfter(doc.Total, newPaid),
		Status:     doc.Status,
		SettledAt:  doc.SettledAt,
	}

	if out.AmountDue.IsZero() && !domain.IsSettledDocumentStatus(doc.Status) {
		out.Status = domain.SettledStatusFor(doc.Kind)
		out.SettledAt = &now
	} else if out.AmountDue.IsPositive() && domain.IsSettledDocumentStatus(doc.Status) {
		out.Status = domain.DocOpen
		out.SettledAt = nil
	}
	return out
}

// CalculateSignedAmount applies the correct sign to a journal line amount
// based on the account's type, so balances can be accumulated uniformly.
//
// DEBIT to ASSET/EXPENSE -> positive; CREDIT to ASSET/EXPENSE -> negative.
// DEBIT to LIABILITY/EQUITY/REVENUE -> negative; CREDIT -> positive.
func CalculateSignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	amount := line.LineAmount()
	isDebit := line.IsDebit()

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			amount = amount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			amount = amount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type %q for account ID %s", accountType, line.AccountID)
	}
	return amount, nil
}

// SumDebitsCredits totals the two sides of a set of journal lines.
func SumDebitsCredits(lines []domain.JournalLine) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.DebitAmount)
		credits = credits.Add(line.CreditAmount)
	}
	return debits, credits
}
