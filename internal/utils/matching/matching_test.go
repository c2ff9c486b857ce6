package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

func TestDescriptionsSimilar(t *testing.T) {
	cases := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"exact ignoring case", "Payment from Acme Corp", "payment from ACME CORP", true},
		{"two shared tokens", "Acme Corp invoice 1042", "Transfer Acme Corp", true},
		{"one shared token only", "Acme payment", "Acme refund", false},
		{"short fillers ignored", "to of at", "to of at somewhere", false},
		{"nothing in common", "Office rent June", "Stripe payout", false},
		{"both empty", "", "", false},
		{"one empty", "Acme Corp", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DescriptionsSimilar(tc.a, tc.b))
			assert.Equal(t, tc.expected, DescriptionsSimilar(tc.b, tc.a), "must be symmetric")
		})
	}
}

func txn(txnType domain.BankTransactionType, amount string, desc string) domain.BankTransaction {
	amt, _ := decimal.NewFromString(amount)
	return domain.BankTransaction{Type: txnType, Amount: amt, Description: desc}
}

func TestIsLikelyDuplicate(t *testing.T) {
	base := txn(domain.Deposit, "212.00", "Payment from Acme Corp")

	assert.True(t, IsLikelyDuplicate(base, txn(domain.Deposit, "212.00", "payment from ACME CORP")))
	assert.True(t, IsLikelyDuplicate(base, txn(domain.Deposit, "212.005", "Payment from Acme Corp")),
		"sub-cent difference is still the same amount")

	assert.False(t, IsLikelyDuplicate(base, txn(domain.Withdrawal, "212.00", "Payment from Acme Corp")),
		"direction must match")
	assert.False(t, IsLikelyDuplicate(base, txn(domain.Deposit, "212.01", "Payment from Acme Corp")),
		"a full cent apart is a different amount")
	assert.False(t, IsLikelyDuplicate(base, txn(domain.Deposit, "212.00", "Office rent June")))
}

func ptrDec(s string) *decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return &d
}

func ptrDir(d domain.BankTransactionType) *domain.BankTransactionType { return &d }

func TestRuleMatches(t *testing.T) {
	stripePayout := txn(domain.Deposit, "900.00", "STRIPE PAYOUT 8842")

	descriptionRule := domain.MatchingRule{DescriptionContains: []string{"stripe", "payout"}}
	assert.True(t, RuleMatches(descriptionRule, stripePayout))

	missingNeedle := domain.MatchingRule{DescriptionContains: []string{"stripe", "refund"}}
	assert.False(t, RuleMatches(missingNeedle, stripePayout), "every needle must appear")

	amountRule := domain.MatchingRule{MinAmount: ptrDec("500"), MaxAmount: ptrDec("1000")}
	assert.True(t, RuleMatches(amountRule, stripePayout))
	assert.False(t, RuleMatches(amountRule, txn(domain.Deposit, "1500.00", "STRIPE PAYOUT 8842")))
	assert.False(t, RuleMatches(amountRule, txn(domain.Deposit, "400.00", "STRIPE PAYOUT 8842")))

	boundary := domain.MatchingRule{MinAmount: ptrDec("900"), MaxAmount: ptrDec("900")}
	assert.True(t, RuleMatches(boundary, stripePayout), "bounds are inclusive")

	directionRule := domain.MatchingRule{Direction: ptrDir(domain.Withdrawal)}
	assert.False(t, RuleMatches(directionRule, stripePayout))
	assert.True(t, RuleMatches(directionRule, txn(domain.Withdrawal, "50.00", "Bank fee")))

	unconstrained := domain.MatchingRule{}
	assert.False(t, RuleMatches(unconstrained, stripePayout), "a rule with no conditions matches nothing")
}

func TestRuleMatches_AllConditionsMustHold(t *testing.T) {
	rule := domain.MatchingRule{
		Direction:           ptrDir(domain.Deposit),
		MinAmount:           ptrDec("100"),
		DescriptionContains: []string{"acme"},
	}

	assert.True(t, RuleMatches(rule, txn(domain.Deposit, "212.00", "Payment from Acme Corp")))
	assert.False(t, RuleMatches(rule, txn(domain.Deposit, "50.00", "Payment from Acme Corp")))
	assert.False(t, RuleMatches(rule, txn(domain.Deposit, "212.00", "Payment from Initech")))
}
