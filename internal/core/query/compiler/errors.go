// Package compiler turns a query graph into an abstract statement: select
// list, joins implied by to-one relation traversal, parameterized where-tree,
// alias map and nested-relation descriptors. Compilation is pure, performs no
// I/O, and is deterministic for a given graph.
package compiler

import "fmt"

// CompileError rejects a query graph before any parameter is allocated.
// It covers unsupported operators and combinators, unselected sort targets
// and invalid relation shapes; no partial statement is ever returned.
type CompileError struct {
	Message string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return "compile: " + e.Message
}

func compileErrorf(format string, args ...any) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...)}
}
