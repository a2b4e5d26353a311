package scan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/braceval/internal/scan"
)

func TestScan_LiteralOnly(t *testing.T) {
	segs, err := scan.Scan("no placeholders here", scan.SyntaxBrace)
	require.NoError(t, err)
	require.Equal(t, []scan.Segment{{Kind: scan.KindLiteral, Text: "no placeholders here"}}, segs)
}

func TestScan_BasicExpression(t *testing.T) {
	segs, err := scan.Scan("Hello, {name}!", scan.SyntaxBrace)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	require.Equal(t, scan.Segment{Kind: scan.KindLiteral, Text: "Hello, "}, segs[0])
	require.Equal(t, scan.KindExpr, segs[1].Kind)
	require.Equal(t, "name", segs[1].Text)
	require.Equal(t, 7, segs[1].Start)
	require.Equal(t, 13, segs[1].End)
	require.Equal(t, scan.Segment{Kind: scan.KindLiteral, Text: "!"}, segs[2])
}

func TestScan_EscapedBraces(t *testing.T) {
	tests := []struct {
		name     string
		template string
		mode     scan.Syntax
		want     string
	}{
		{"doubled open and close", "{{x}}", scan.SyntaxBrace, "{x}"},
		{"doubled close alone", "}}", scan.SyntaxBrace, "}"},
		{"doubled open alone", "{{", scan.SyntaxBrace, "{"},
		{"doubled in dollar mode", "{{x}}", scan.SyntaxDollar, "{x}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := scan.Scan(tt.template, tt.mode)
			require.NoError(t, err)
			require.Len(t, segs, 1)
			require.Equal(t, scan.KindLiteral, segs[0].Kind)
			require.Equal(t, tt.want, segs[0].Text)
		})
	}
}

func TestScan_DollarMode(t *testing.T) {
	segs, err := scan.Scan("{x} ${x}", scan.SyntaxDollar)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	require.Equal(t, scan.Segment{Kind: scan.KindLiteral, Text: "{x} "}, segs[0])
	require.Equal(t, scan.KindExpr, segs[1].Kind)
	require.Equal(t, "x", segs[1].Text)
}

func TestScan_BraceModeProtectsDollarSpans(t *testing.T) {
	segs, err := scan.Scan("{x} ${x}", scan.SyntaxBrace)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	require.Equal(t, scan.KindExpr, segs[0].Kind)
	require.Equal(t, "x", segs[0].Text)
	require.Equal(t, scan.Segment{Kind: scan.KindLiteral, Text: " ${x}"}, segs[1])
}

func TestScan_NestedBraces(t *testing.T) {
	segs, err := scan.Scan(`{ {"a": 1} }`, scan.SyntaxBrace)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	require.Equal(t, scan.KindExpr, segs[0].Kind)
	require.Equal(t, ` {"a": 1} `, segs[0].Text)
}

func TestScan_QuotedBracesInert(t *testing.T) {
	segs, err := scan.Scan(`{f("}")}`, scan.SyntaxBrace)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	require.Equal(t, `f("}")`, segs[0].Text)
}

func TestScan_LoneCloseBraceIsLiteral(t *testing.T) {
	segs, err := scan.Scan("a } b", scan.SyntaxBrace)
	require.NoError(t, err)
	require.Equal(t, []scan.Segment{{Kind: scan.KindLiteral, Text: "a } b"}}, segs)
}

func TestScan_Unterminated(t *testing.T) {
	_, err := scan.Scan("Hi {oops", scan.SyntaxBrace)
	require.Error(t, err)
	var ue *scan.UnterminatedError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, 3, ue.Offset)

	_, err = scan.Scan("Hi ${oops", scan.SyntaxDollar)
	require.Error(t, err)
}

func TestScan_UnterminatedProtectedDollarSpan(t *testing.T) {
	// Protected ${...} text in brace mode must still close its span.
	_, err := scan.Scan("cost ${x", scan.SyntaxBrace)
	require.Error(t, err)
	var ue *scan.UnterminatedError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, 6, ue.Offset)
}

func TestScan_SegmentsReconstructTemplate(t *testing.T) {
	const tmpl = "a {x} b {y:N2} c"
	segs, err := scan.Scan(tmpl, scan.SyntaxBrace)
	require.NoError(t, err)

	var rebuilt string
	for _, s := range segs {
		if s.Kind == scan.KindLiteral {
			rebuilt += s.Text
		} else {
			rebuilt += tmpl[s.Start:s.End]
		}
	}
	require.Equal(t, tmpl, rebuilt)
}
