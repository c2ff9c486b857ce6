package accounting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRoundMinor(t *testing.T) {
	assert.True(t, RoundMinor(dec("10.005"), "USD").Equal(dec("10.01")))
	assert.True(t, RoundMinor(dec("10.004"), "USD").Equal(dec("10.00")))
	// Zero-decimal currency
	assert.True(t, RoundMinor(dec("10.5"), "JPY").Equal(dec("11")))
	// Three-decimal currency
	assert.True(t, RoundMinor(dec("10.0004"), "KWD").Equal(dec("10.000")))
	assert.True(t, RoundMinor(dec("10.0005"), "BHD").Equal(dec("10.001")))
}

func TestComputeLineAmount(t *testing.T) {
	item := domain.LineItem{Quantity: dec("2"), UnitPrice: dec("100")}
	assert.True(t, ComputeLineAmount(item).Equal(dec("200")))

	discounted := domain.LineItem{Quantity: dec("3"), UnitPrice: dec("50"), DiscountPercent: dec("10")}
	assert.True(t, ComputeLineAmount(discounted).Equal(dec("135")))
}

func TestComputeTotals(t *testing.T) {
	items := []domain.LineItem{
		{Quantity: dec("2"), UnitPrice: dec("100")},
	}
	adjustments := []domain.BillingAdjustment{
		{Name: "Sales Tax", Type: domain.AdjustmentPercentage, Value: dec("6")},
	}

	totals := ComputeTotals(items, adjustments, decimal.Zero, "USD")

	assert.True(t, totals.Subtotal.Equal(dec("200")), "subtotal: %s", totals.Subtotal)
	assert.True(t, totals.TaxTotal.Equal(dec("12")), "tax: %s", totals.TaxTotal)
	assert.True(t, totals.DiscountTotal.IsZero())
	assert.True(t, totals.Total.Equal(dec("212")), "total: %s", totals.Total)
	assert.True(t, totals.AmountDue.Equal(dec("212")))

	// Derived per-line amounts are written back.
	assert.True(t, items[0].Amount.Equal(dec("200")))
}

func TestComputeTotals_NegativeAdjustmentIsDiscount(t *testing.T) {
	items := []domain.LineItem{
		{Quantity: dec("1"), UnitPrice: dec("500")},
	}
	adjustments := []domain.BillingAdjustment{
		{Name: "Early payment", Type: domain.AdjustmentFixed, Value: dec("-50")},
		{Name: "VAT", Type: domain.AdjustmentPercentage, Value: dec("7")},
	}

	totals := ComputeTotals(items, adjustments, decimal.Zero, "USD")

	assert.True(t, totals.DiscountTotal.Equal(dec("50")))
	assert.True(t, totals.TaxTotal.Equal(dec("35")))
	assert.True(t, totals.Total.Equal(dec("485")), "total: %s", totals.Total)
}

func TestComputeTotals_RoundsPerAdjustment(t *testing.T) {
	items := []domain.LineItem{
		{Quantity: dec("3"), UnitPrice: dec("33.33")},
	}
	adjustments := []domain.BillingAdjustment{
		{Name: "Tax", Type: domain.AdjustmentPercentage, Value: dec("7.5")},
	}

	totals := ComputeTotals(items, adjustments, decimal.Zero, "USD")

	// 99.99 * 7.5% = 7.49925 -> 7.50 at the output boundary.
	assert.True(t, totals.Subtotal.Equal(dec("99.99")))
	assert.True(t, totals.TaxTotal.Equal(dec("7.50")), "tax: %s", totals.TaxTotal)
	assert.True(t, totals.Total.Equal(dec("107.49")))
}

func TestComputeTotals_AmountDueFloor(t *testing.T) {
	items := []domain.LineItem{
		{Quantity: dec("1"), UnitPrice: dec("100")},
	}

	totals := ComputeTotals(items, nil, dec("150"), "USD")

	assert.True(t, totals.AmountDue.IsZero(), "due never goes negative")
}

func TestAmountDueAfter(t *testing.T) {
	assert.True(t, AmountDueAfter(dec("212"), dec("100")).Equal(dec("112")))
	assert.True(t, AmountDueAfter(dec("212"), dec("212")).IsZero())
	assert.True(t, AmountDueAfter(dec("212"), dec("300")).IsZero())
}

func TestCalculateSignedAmount(t *testing.T) {
	debit := domain.JournalLine{AccountID: "a", DebitAmount: dec("100")}
	credit := domain.JournalLine{AccountID: "a", CreditAmount: dec("100")}

	cases := []struct {
		name        string
		line        domain.JournalLine
		accountType domain.AccountType
		expected    string
	}{
		{"debit asset", debit, domain.Asset, "100"},
		{"credit asset", credit, domain.Asset, "-100"},
		{"debit expense", debit, domain.Expense, "100"},
		{"credit expense", credit, domain.Expense, "-100"},
		{"debit liability", debit, domain.Liability, "-100"},
		{"credit liability", credit, domain.Liability, "100"},
		{"debit equity", debit, domain.Equity, "-100"},
		{"credit equity", credit, domain.Equity, "100"},
		{"debit revenue", debit, domain.Revenue, "-100"},
		{"credit revenue", credit, domain.Revenue, "100"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signed, err := CalculateSignedAmount(tc.line, tc.accountType)
			require.NoError(t, err)
			assert.True(t, signed.Equal(dec(tc.expected)), "got %s", signed)
		})
	}
}

func TestCalculateSignedAmount_UnknownType(t *testing.T) {
	line := domain.JournalLine{AccountID: "a", DebitAmount: dec("100")}
	_, err := CalculateSignedAmount(line, domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestSumDebitsCredits(t *testing.T) {
	lines := []domain.JournalLine{
		{DebitAmount: dec("100")},
		{CreditAmount: dec("60")},
		{CreditAmount: dec("40")},
	}

	debits, credits := SumDebitsCredits(lines)
	assert.True(t, debits.Equal(dec("100")))
	assert.True(t, credits.Equal(dec("100")))
}

func TestApplyAllocation_PartialPaymentStaysOpen(t *testing.T) {
	doc := domain.FinancialDocument{
		Kind:           domain.KindInvoice,
		Status:         domain.DocOpen,
		DocumentTotals: domain.DocumentTotals{Total: dec("100"), AmountPaid: dec("20")},
	}

	out := ApplyAllocation(doc, dec("30"), time.Now().UTC())

	assert.True(t, out.AmountPaid.Equal(dec("50")))
	assert.True(t, out.AmountDue.Equal(dec("50")))
	assert.Equal(t, domain.DocOpen, out.Status)
	assert.Nil(t, out.SettledAt)
}

func TestApplyAllocation_FullPaymentSettles(t *testing.T) {
	now := time.Now().UTC()
	doc := domain.FinancialDocument{
		Kind:           domain.KindInvoice,
		Status:         domain.DocOpen,
		DocumentTotals: domain.DocumentTotals{Total: dec("100"), AmountPaid: dec("60")},
	}

	out := ApplyAllocation(doc, dec("40"), now)

	assert.True(t, out.AmountDue.IsZero())
	assert.Equal(t, domain.DocPaid, out.Status)
	require.NotNil(t, out.SettledAt)
	assert.Equal(t, now, *out.SettledAt)
}

func TestApplyAllocation_CreditNoteSettles(t *testing.T) {
	doc := domain.FinancialDocument{
		Kind:           domain.KindCreditNote,
		Status:         domain.DocOpen,
		DocumentTotals: domain.DocumentTotals{Total: dec("75")},
	}

	out := ApplyAllocation(doc, dec("75"), time.Now().UTC())

	assert.Equal(t, domain.DocSettled, out.Status)
	assert.NotNil(t, out.SettledAt)
}

func TestApplyAllocation_ReversalReopensSettledDocument(t *testing.T) {
	settled := time.Now().UTC().Add(-time.Hour)
	doc := domain.FinancialDocument{
		Kind:           domain.KindInvoice,
		Status:         domain.DocPaid,
		DocumentTotals: domain.DocumentTotals{Total: dec("100"), AmountPaid: dec("100")},
		SettledAt:      &settled,
	}

	out := ApplyAllocation(doc, dec("-40"), time.Now().UTC())

	assert.True(t, out.AmountPaid.Equal(dec("60")))
	assert.True(t, out.AmountDue.Equal(dec("40")))
	assert.Equal(t, domain.DocOpen, out.Status)
	assert.Nil(t, out.SettledAt)
}

func TestApplyAllocation_ReversalOfPartialPaymentStaysOpen(t *testing.T) {
	doc := domain.FinancialDocument{
		Kind:           domain.KindInvoice,
		Status:         domain.DocOpen,
		DocumentTotals: domain.DocumentTotals{Total: dec("100"), AmountPaid: dec("50")},
	}

	out := ApplyAllocation(doc, dec("-20"), time.Now().UTC())

	assert.True(t, out.AmountPaid.Equal(dec("30")))
	assert.True(t, out.AmountDue.Equal(dec("70")))
	assert.Equal(t, domain.DocOpen, out.Status)
	assert.Nil(t, out.SettledAt)
}
