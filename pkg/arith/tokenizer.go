package arith

import (
	"strings"
	"unicode"
)

// MessageInvalidCharacter is reported for anything other than digits, operators and spaces.
const MessageInvalidCharacter = "Invalid character in expression. Please use only digits (0-9), operators (+, -, *, /), and spaces."

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string {
	return e.Message
}

func syntaxErr(msg string) error {
	return &SyntaxError{Message: msg}
}

// Tokenize splits expr into number and operator tokens. Any whitespace separates tokens.
func (r *Registry) Tokenize(expr string) ([]string, error) {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, ch := range strings.TrimSpace(expr) {
		s := string(ch)
		switch {
		case unicode.IsSpace(ch):
			flush()
		case ch == '-':
			switch {
			case current.Len() > 0:
				flush()
				tokens = append(tokens, s)
			case len(tokens) == 0 || r.IsOperator(tokens[len(tokens)-1]):
				current.WriteRune(ch)
			default:
				tokens = append(tokens, s)
			}
		case r.IsOperator(s):
			flush()
			tokens = append(tokens, s)
		case ch >= '0' && ch <= '9':
			current.WriteRune(ch)
		default:
			return nil, syntaxErr(MessageInvalidCharacter)
		}
	}
	flush()

	return tokens, nil
}
