package scan

import "fmt"

// Syntax selects which placeholder delimiter opens a live expression span.
type Syntax int

const (
	// SyntaxBrace treats {expr} as live and ${...} as literal text.
	SyntaxBrace Syntax = iota
	// SyntaxDollar treats ${expr} as live and bare braces as literal text.
	SyntaxDollar
)

// Kind discriminates the two segment variants.
type Kind int

const (
	// KindLiteral is verbatim text to emit.
	KindLiteral Kind = iota
	// KindExpr is the raw body of an expression span.
	KindExpr
)

// Segment is one ordered piece of a scanned template. For KindExpr, Text is
// the content strictly between the outer braces and Start/End are the byte
// offsets of the span (delimiters included) in the original template.
type Segment struct {
	Kind  Kind
	Text  string
	Start int
	End   int
}

// UnterminatedError reports an expression span that was still open when the
// end of the template was reached. Unterminated spans are always a hard
// parse failure; there is no best-effort recovery.
type UnterminatedError struct {
	Offset int
}

func (e *UnterminatedError) Error() string {
	return fmt.Sprintf("unterminated expression starting at offset %d", e.Offset)
}

// Scan tokenizes a template into an ordered list of literal and expression
// segments. Adjacent literal runs are merged into one segment.
func Scan(template string, mode Syntax) ([]Segment, error) {
	var segs []Segment
	var lit []byte

	flush := func() {
		if len(lit) > 0 {
			segs = append(segs, Segment{Kind: KindLiteral, Text: string(lit)})
			lit = lit[:0]
		}
	}

	i := 0
	n := len(template)
	for i < n {
		c := template[i]

		// Doubled braces collapse to one literal brace in both modes.
		if c == '{' && i+1 < n && template[i+1] == '{' {
			lit = append(lit, '{')
			i += 2
			continue
		}
		if c == '}' && i+1 < n && template[i+1] == '}' {
			lit = append(lit, '}')
			i += 2
			continue
		}

		switch mode {
		case SyntaxBrace:
			if c == '$' && i+1 < n && template[i+1] == '{' {
				// ${...} is protected literal text in brace syntax. The
				// whole span, dollar and braces included, passes through
				// verbatim. An unclosed span is still a parse failure:
				// read as a literal dollar instead, the brace after it
				// would open a live span that never terminates either. The
				// reported offset is the brace's.
				end, err := scanSpanEnd(template, i+2)
				if err != nil {
					return nil, &UnterminatedError{Offset: i + 1}
				}
				lit = append(lit, template[i:end]...)
				i = end
				continue
			}
			if c == '{' {
				end, err := scanSpanEnd(template, i+1)
				if err != nil {
					return nil, &UnterminatedError{Offset: i}
				}
				flush()
				segs = append(segs, Segment{
					Kind:  KindExpr,
					Text:  template[i+1 : end-1],
					Start: i,
					End:   end,
				})
				i = end
				continue
			}
		case SyntaxDollar:
			if c == '$' && i+1 < n && template[i+1] == '{' {
				end, err := scanSpanEnd(template, i+2)
				if err != nil {
					return nil, &UnterminatedError{Offset: i}
				}
				flush()
				segs = append(segs, Segment{
					Kind:  KindExpr,
					Text:  template[i+2 : end-1],
					Start: i,
					End:   end,
				})
				i = end
				continue
			}
			// Bare braces are ordinary literal characters in dollar syntax.
		}

		lit = append(lit, c)
		i++
	}
	flush()
	return segs, nil
}

// scanSpanEnd scans from just past an opening delimiter to the matching
// closing brace, tracking nested braces and embedded string literals.
// It returns the offset one past the closing brace.
func scanSpanEnd(template string, from int) (int, error) {
	depth := 1
	var quote byte
	i := from
	n := len(template)
	for i < n {
		c := template[i]
		if quote != 0 {
			if c == '\\' && i+1 < n {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
		i++
	}
	return 0, &UnterminatedError{Offset: from}
}
