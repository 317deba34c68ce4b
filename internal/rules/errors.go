// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

package rules

import "fmt"

// CompilationError reports a malformed rule: unknown field, operator invalid
// for the field's type class, or a target value that does not parse into the
// field's value type. It aborts compilation of the whole rule set before any
// evaluation happens.
type CompilationError struct {
	Field    string
	Operator Operator
	Value    string
	Reason   string
}

// Error implements the error interface.
func (e *CompilationError) Error() string {
	return fmt.Sprintf("rule compilation failed: field=%q operator=%q value=%q: %s",
		e.Field, e.Operator, e.Value, e.Reason)
}

func compileErr(expr Expression, reason string) *CompilationError {
	return &CompilationError{
		Field:    expr.MemberName,
		Operator: expr.Operator,
		Value:    expr.TargetValue,
		Reason:   reason,
	}
}
