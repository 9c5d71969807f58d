// Package arith is the reference evaluator for integer arithmetic expressions.
//
// Expressions are flat sequences of integers and the binary operators + - * /.
// A '-' directly before a number is a sign when it starts the expression or
// follows another operator. Multiplication and division bind tighter than
// addition and subtraction; all operators are left associative and division
// truncates toward zero.
//
//	v, err := arith.Calculate("3 * -2 + 6") // 0, nil
package arith
