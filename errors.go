package braceval

import (
	"fmt"
	"strings"
)

// ParseError reports malformed placeholder syntax, such as an unterminated
// expression span. Parse errors are fatal under both strict and permissive
// options; a template that does not parse is never silently rendered.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("template parse error at offset %d: %s", e.Offset, e.Message)
}

// ResolveError reports an expression no resolver tier produced a value for.
// It is only surfaced when ThrowOnMissingParameter is set; by default
// missing data renders as an empty string.
type ResolveError struct {
	Expression  string
	Suggestions []string
}

func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("cannot resolve expression %q", e.Expression)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// EvalError reports an expression that failed inside the expression
// evaluator: a syntax error in the embedded expression, a type error, or a
// timeout. Surfaced only when ThrowOnError is set.
type EvalError struct {
	Expression string
	Err        error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluation of %q failed: %v", e.Expression, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// FormatError reports a format specifier inapplicable to the resolved
// value. Surfaced only when ThrowOnError is set; otherwise the value falls
// back to its default rendering.
type FormatError struct {
	Expression string
	Specifier  string
	Err        error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("formatting %q with %q failed: %v", e.Expression, e.Specifier, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// BatchError names the template key that failed inside a batch evaluation.
// Sibling templates are still evaluated; batch errors are joined.
type BatchError struct {
	Key string
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Key, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
