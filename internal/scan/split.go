package scan

import (
	"strconv"
	"strings"
)

// SplitResult is the decomposition of a raw expression body into the
// expression text and its optional alignment and format specifier.
type SplitResult struct {
	Expr         string
	Alignment    int
	HasAlignment bool
	Format       string
	HasFormat    bool
}

// Split decomposes the raw body of an expression span. The scan runs outside
// of string literals and tracks independent nesting depth for (), [] and {}.
//
// A `?` at depth zero opens a ternary; the next depth-zero `:` closes it and
// is not a format separator. `??` is a single null-coalescing token, never
// two ternary markers. The first depth-zero `:` with no ternary pending
// starts the format specifier. Among the depth-zero commas before that
// colon, the last one whose suffix parses as a signed integer is the
// alignment separator; commas that do not introduce an integer stay part of
// the expression text.
func Split(raw string) SplitResult {
	var (
		parens, bracks, braces int
		quote                  byte
		pendingTernary         int
		colonAt                = -1
	)

	var commaAts []int
	n := len(raw)
	for i := 0; i < n; i++ {
		c := raw[i]
		if quote != 0 {
			if c == '\\' && i+1 < n {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			parens++
		case ')':
			parens--
		case '[':
			bracks++
		case ']':
			bracks--
		case '{':
			braces++
		case '}':
			braces--
		case '?':
			if parens == 0 && bracks == 0 && braces == 0 {
				if i+1 < n && raw[i+1] == '?' {
					i++ // null-coalescing, not a ternary
					continue
				}
				pendingTernary++
			}
		case ':':
			if parens == 0 && bracks == 0 && braces == 0 {
				if pendingTernary > 0 {
					pendingTernary--
					continue
				}
				colonAt = i
			}
		case ',':
			if parens == 0 && bracks == 0 && braces == 0 {
				commaAts = append(commaAts, i)
			}
		}
		if colonAt >= 0 {
			break
		}
	}

	res := SplitResult{}
	exprEnd := n
	if colonAt >= 0 {
		res.Format = strings.TrimSpace(raw[colonAt+1:])
		res.HasFormat = true
		exprEnd = colonAt
	}

	// Walk alignment candidates right to left; the comma adjacent to the
	// format position wins.
	for j := len(commaAts) - 1; j >= 0; j-- {
		at := commaAts[j]
		if at >= exprEnd {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimSpace(raw[at+1 : exprEnd])); err == nil {
			res.Alignment = v
			res.HasAlignment = true
			exprEnd = at
		}
		break
	}

	res.Expr = strings.TrimSpace(raw[:exprEnd])
	return res
}
