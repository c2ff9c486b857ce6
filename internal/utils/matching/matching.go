// Package matching holds the heuristics of the bank reconciliation workflow:
// duplicate screening on import and rule evaluation for match suggestions.
package matching

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks_core/internal/core/domain"
)

// amountTolerance is the maximum absolute amount difference under which two
// transactions are still considered the same amount.
var amountTolerance = decimal.NewFromFloat(0.01)

// minTokenLength excludes short filler words ("to", "co", "of") from the
// token overlap comparison.
const minTokenLength = 2

// minSharedTokens is how many significant tokens two descriptions must share
// before they count as similar.
const minSharedTokens = 2

// DescriptionsSimilar reports whether two free-text descriptions plausibly
// refer to the same real-world transaction. Either the strings match exactly
// ignoring case, or they share at least two significant tokens, where a token
// counts as shared when it appears as a substring of the other description.
func DescriptionsSimilar(a, b string) bool {
	al := strings.ToLower(strings.TrimSpace(a))
	bl := strings.ToLower(strings.TrimSpace(b))
	if al == bl {
		return al != ""
	}

	shared := 0
	counted := make(map[string]bool)
	for _, tok := range strings.Fields(al) {
		if len(tok) <= minTokenLength || counted[tok] {
			continue
		}
		if strings.Contains(bl, tok) {
			counted[tok] = true
			shared++
			if shared >= minSharedTokens {
				return true
			}
		}
	}
	for _, tok := range strings.Fields(bl) {
		if len(tok) <= minTokenLength || counted[tok] {
			continue
		}
		if strings.Contains(al, tok) {
			counted[tok] = true
			shared++
			if shared >= minSharedTokens {
				return true
			}
		}
	}
	return false
}

// IsLikelyDuplicate reports whether an incoming transaction duplicates an
// existing one. The caller has already narrowed candidates to the same bank
// account within the date window; this checks direction, amount and
// description.
func IsLikelyDuplicate(incoming, existing domain.BankTransaction) bool {
	if incoming.Type != existing.Type {
		return false
	}
	if incoming.Amount.Sub(existing.Amount).Abs().GreaterThanOrEqual(amountTolerance) {
		return false
	}
	return DescriptionsSimilar(incoming.Description, existing.Description)
}

// RuleMatches reports whether every condition of a rule holds for a
// transaction. Zero-valued conditions are unconstrained; a rule with no
// conditions matches nothing rather than everything.
func RuleMatches(rule domain.MatchingRule, txn domain.BankTransaction) bool {
	constrained := false

	if rule.Direction != nil {
		if txn.Type != *rule.Direction {
			return false
		}
		constrained = true
	}

	if rule.MinAmount != nil {
		if txn.Amount.LessThan(*rule.MinAmount) {
			return false
		}
		constrained = true
	}
	if rule.MaxAmount != nil {
		if txn.Amount.GreaterThan(*rule.MaxAmount) {
			return false
		}
		constrained = true
	}

	if len(rule.DescriptionContains) > 0 {
		desc := strings.ToLower(txn.Description)
		for _, needle := range rule.DescriptionContains {
			if !strings.Contains(desc, strings.ToLower(needle)) {
				return false
			}
		}
		constrained = true
	}

	return constrained
}
