// Package braceval is a runtime string-interpolation evaluator. Given a
// template containing {expression} (or ${expression}) placeholders and a
// bag of named variables, it parses the placeholders, evaluates the
// embedded expressions against the bindings, applies optional alignment and
// format specifiers, and substitutes the results back into the string.
//
// Placeholder syntax follows the native interpolation form:
//
//	{expr}  {expr:fmt}  {expr,align}  {expr,align:fmt}
//
// with {{ and }} as literal-brace escapes. With
// Options.SupportDollarSignSyntax the live delimiter is ${expr} instead and
// bare braces pass through as literal text.
//
// Expressions resolve through a layered strategy: an optional host resolver
// callback, direct member/indexer access against the variable context,
// a fast path for common collection queries (sum, average, where, select,
// order-by, join, ...), and finally a general expression engine supporting
// arithmetic, comparisons, ternaries, string operations, and a library of
// built-in functions.
//
// By default missing data degrades to empty substitutions; the
// ThrowOnMissingParameter and ThrowOnError options select fail-fast
// behavior instead, with errors that name the offending expression.
package braceval
