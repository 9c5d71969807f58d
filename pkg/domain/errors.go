package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidExpression is matched by every *ValidationError.
var ErrInvalidExpression = errors.New("invalid expression")

// ErrEmptyExpression is returned by the reference evaluator for blank input.
var ErrEmptyExpression = errors.New("Expression cannot be empty")

// ErrDivisionByZero is the arithmetic error reported for a zero divisor.
var ErrDivisionByZero = errors.New("Division by zero")

// ErrCacheMiss is returned by a ResultCache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ValidationError reports the rejection of an expression before it reaches the network.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	return e.Reason.Message()
}

// Is lets errors.Is(err, ErrInvalidExpression) match any rejection.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidExpression
}

// StatusError is returned by an Evaluator when the remote answered with a non-2xx status.
// Message holds the remote-supplied "error" field, if any.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("evaluator returned status %d", e.Status)
	}
	return fmt.Sprintf("evaluator returned status %d: %s", e.Status, e.Message)
}
