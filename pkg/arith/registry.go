package arith

import (
	"fmt"
	"sync"

	"github.com/aretw0/abacus/pkg/domain"
)

// Operation is a binary integer operator.
type Operation struct {
	Symbol     string
	Precedence int
	LeftAssoc  bool
	Apply      func(left, right int64) (int64, error)
}

// Registry maps operator symbols to operations. Safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry returns a registry holding the four default operations.
func NewRegistry() *Registry {
	r := &Registry{ops: make(map[string]Operation)}
	for _, op := range defaultOperations() {
		r.Register(op)
	}
	return r
}

// Register adds or replaces an operation.
func (r *Registry) Register(op Operation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.Symbol] = op
}

// Get returns the operation for symbol.
func (r *Registry) Get(symbol string) (Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[symbol]
	if !ok {
		return Operation{}, fmt.Errorf("unknown operator: %s", symbol)
	}
	return op, nil
}

// IsOperator reports whether symbol is registered.
func (r *Registry) IsOperator(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ops[symbol]
	return ok
}

func defaultOperations() []Operation {
	return []Operation{
		{Symbol: "+", Precedence: 1, LeftAssoc: true, Apply: func(l, r int64) (int64, error) { return l + r, nil }},
		{Symbol: "-", Precedence: 1, LeftAssoc: true, Apply: func(l, r int64) (int64, error) { return l - r, nil }},
		{Symbol: "*", Precedence: 2, LeftAssoc: true, Apply: func(l, r int64) (int64, error) { return l * r, nil }},
		{Symbol: "/", Precedence: 2, LeftAssoc: true, Apply: func(l, r int64) (int64, error) {
			if r == 0 {
				return 0, domain.ErrDivisionByZero
			}
			return l / r, nil
		}},
	}
}
