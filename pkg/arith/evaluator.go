package arith

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/abacus/pkg/domain"
)

var numberToken = regexp.MustCompile(`^-?[0-9]+$`)

func isNumber(token string) bool {
	return numberToken.MatchString(token)
}

var defaultRegistry = NewRegistry()

// Calculate evaluates expr with the default operations.
func Calculate(expr string) (int64, error) {
	return defaultRegistry.Calculate(expr)
}

// Calculate tokenizes, checks and evaluates expr.
func (r *Registry) Calculate(expr string) (int64, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, domain.ErrEmptyExpression
	}
	tokens, err := r.Tokenize(expr)
	if err != nil {
		return 0, err
	}
	if err := r.ValidateTokens(tokens); err != nil {
		return 0, err
	}
	return r.Evaluate(tokens)
}

// ValidateTokens checks that tokens alternate number, operator, number and so on.
func (r *Registry) ValidateTokens(tokens []string) error {
	if len(tokens) == 0 {
		return domain.ErrEmptyExpression
	}
	if !isNumber(tokens[0]) {
		return syntaxErr("Expression must start with a number")
	}
	if !isNumber(tokens[len(tokens)-1]) {
		return syntaxErr("Expression must end with a number")
	}
	for i, tok := range tokens {
		if i%2 == 0 && !isNumber(tok) {
			return syntaxErr(fmt.Sprintf("Invalid expression: expected number at position %d", i))
		}
		if i%2 == 1 && !r.IsOperator(tok) {
			return syntaxErr(fmt.Sprintf("Invalid expression: expected operator at position %d", i))
		}
	}
	return nil
}

// Evaluate runs the shunting-yard algorithm over validated tokens.
func (r *Registry) Evaluate(tokens []string) (int64, error) {
	var operands []int64
	var operators []Operation

	apply := func() error {
		if len(operands) < 2 {
			return syntaxErr("Invalid expression: missing operand")
		}
		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]
		left, right := operands[len(operands)-2], operands[len(operands)-1]
		operands = operands[:len(operands)-2]
		v, err := op.Apply(left, right)
		if err != nil {
			return err
		}
		operands = append(operands, v)
		return nil
	}

	for _, tok := range tokens {
		if isNumber(tok) {
			n, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return 0, syntaxErr(fmt.Sprintf("Number out of range: %s", tok))
			}
			operands = append(operands, n)
			continue
		}

		current, err := r.Get(tok)
		if err != nil {
			return 0, syntaxErr(err.Error())
		}
		for len(operators) > 0 && shouldPop(operators[len(operators)-1], current) {
			if err := apply(); err != nil {
				return 0, err
			}
		}
		operators = append(operators, current)
	}

	for len(operators) > 0 {
		if err := apply(); err != nil {
			return 0, err
		}
	}
	if len(operands) != 1 {
		return 0, syntaxErr("Invalid expression: missing operator")
	}
	return operands[0], nil
}

func shouldPop(top, current Operation) bool {
	return top.Precedence > current.Precedence ||
		(top.Precedence == current.Precedence && current.LeftAssoc)
}
