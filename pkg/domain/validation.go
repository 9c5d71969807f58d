package domain

// Reason identifies why an expression was rejected by local validation.
type Reason string

const (
	ReasonRequired                Reason = "required"
	ReasonInvalidMathExpression   Reason = "invalidMathExpression"
	ReasonParenthesesNotAllowed   Reason = "parenthesesNotAllowed"
	ReasonDecimalNotAllowed       Reason = "decimalNotAllowed"
	ReasonInvalidDecimalPoint     Reason = "invalidDecimalPoint"
	ReasonConsecutiveOperators    Reason = "consecutiveOperators"
	ReasonInvalidOperatorPosition Reason = "invalidOperatorPosition"
)

var reasonMessages = map[Reason]string{
	ReasonRequired:                "Expression is required",
	ReasonInvalidMathExpression:   "Expression can only contain integers and operators (+, -, *, /)",
	ReasonParenthesesNotAllowed:   "Parentheses are not supported. Please use simple arithmetic expressions",
	ReasonDecimalNotAllowed:       "Decimal numbers are not supported. Please use only integers",
	ReasonInvalidDecimalPoint:     "Decimal points are not allowed. Please use only integers",
	ReasonConsecutiveOperators:    "Consecutive operators are not allowed",
	ReasonInvalidOperatorPosition: "Expression cannot start or end with an operator",
}

// Message returns the fixed human-readable text for the reason.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// ValidationOutcome is the tagged result of local validation.
// When Valid is true, Expression carries the text to submit and Reason is empty.
type ValidationOutcome struct {
	Valid      bool   `json:"valid"`
	Expression string `json:"expression,omitempty"`
	Reason     Reason `json:"reason,omitempty"`
}

// Accept builds a Valid outcome.
func Accept(expression string) ValidationOutcome {
	return ValidationOutcome{Valid: true, Expression: expression}
}

// Reject builds an Invalid outcome.
func Reject(reason Reason) ValidationOutcome {
	return ValidationOutcome{Reason: reason}
}

// Message returns the rejection message, or "" for a valid outcome.
func (o ValidationOutcome) Message() string {
	if o.Valid {
		return ""
	}
	return o.Reason.Message()
}

// Err returns a *ValidationError for an invalid outcome and nil otherwise.
func (o ValidationOutcome) Err() error {
	if o.Valid {
		return nil
	}
	return &ValidationError{Reason: o.Reason}
}
