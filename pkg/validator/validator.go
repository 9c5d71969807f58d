// Package validator checks the surface syntax of integer arithmetic expressions
// before they are sent to the remote evaluator.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/aretw0/abacus/pkg/domain"
)

var (
	grammar         = regexp.MustCompile(`^-?[0-9]+(\s*[+\-*/]\s*-?[0-9]+)*$`)
	decimalNumber   = regexp.MustCompile(`[0-9]+\.[0-9]+`)
	operatorRun     = regexp.MustCompile(`[+*/]{2,}`)
	doubleNegative  = regexp.MustCompile(`-{2,}`)
	leadingOperator = "+*/"
	anyOperator     = "+-*/"
)

// grammarSpace is the set matched by \s in the grammar.
const grammarSpace = " \t\n\f\r"

// Rule is one rejection check. Rules are evaluated in slice order and the first
// match decides the reason.
type Rule struct {
	Reason  domain.Reason
	Rejects func(raw, trimmed string) bool
}

// rules is ordered by precedence. The itemized checks run before the grammar so
// that each rejection carries its specific message; the grammar is the catch-all.
var rules = []Rule{
	{domain.ReasonRequired, func(raw, _ string) bool {
		return raw == ""
	}},
	{domain.ReasonParenthesesNotAllowed, func(raw, _ string) bool {
		return strings.ContainsAny(raw, "()")
	}},
	{domain.ReasonDecimalNotAllowed, func(raw, _ string) bool {
		return decimalNumber.MatchString(raw)
	}},
	{domain.ReasonInvalidDecimalPoint, func(raw, _ string) bool {
		return strings.Contains(raw, ".")
	}},
	{domain.ReasonConsecutiveOperators, func(raw, _ string) bool {
		compact := stripSpace(raw)
		return operatorRun.MatchString(compact) || doubleNegative.MatchString(compact)
	}},
	{domain.ReasonInvalidOperatorPosition, func(_, trimmed string) bool {
		if trimmed == "" {
			return false
		}
		return strings.ContainsRune(leadingOperator, rune(trimmed[0])) ||
			strings.ContainsRune(anyOperator, rune(trimmed[len(trimmed)-1]))
	}},
	{domain.ReasonInvalidMathExpression, func(_, trimmed string) bool {
		return !grammar.MatchString(trimmed)
	}},
}

// Validate classifies raw input. It is pure and total: any string, including
// invalid UTF-8, yields exactly one outcome. A valid outcome carries raw unchanged.
func Validate(raw string) domain.ValidationOutcome {
	trimmed := strings.Trim(raw, grammarSpace)
	for _, r := range rules {
		if r.Rejects(raw, trimmed) {
			return domain.Reject(r.Reason)
		}
	}
	return domain.Accept(raw)
}

// Rules returns the rejection reasons in precedence order.
func Rules() []domain.Reason {
	out := make([]domain.Reason, len(rules))
	for i, r := range rules {
		out[i] = r.Reason
	}
	return out
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Markdown renders the rejection rules as a Markdown table in precedence order.
func Markdown() string {
	var b strings.Builder
	b.WriteString("# Expression rules\n\n")
	b.WriteString("Expressions are integers joined by `+`, `-`, `*` or `/`. ")
	b.WriteString("A number may carry a leading `-`. The first matching rule decides the message.\n\n")
	b.WriteString("| # | reason | message |\n|---|---|---|\n")
	for i, r := range rules {
		fmt.Fprintf(&b, "| %d | `%s` | %s |\n", i+1, r.Reason, r.Reason.Message())
	}
	return b.String()
}
