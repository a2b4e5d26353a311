// Package scan tokenizes interpolation templates into literal and
// expression segments, and splits a raw expression body into its
// expression text, alignment, and format specifier.
//
// Two placeholder syntaxes are supported. In brace syntax, `{expr}` is a
// live expression span and `${...}` is passed through as literal text. In
// dollar-sign syntax, `${expr}` is live and bare braces are literal.
// Doubled braces (`{{`, `}}`) collapse to a single literal brace in both
// modes. The scanner is purely functional over its input.
package scan
