package scan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/braceval/internal/scan"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want scan.SplitResult
	}{
		{
			name: "bare expression",
			raw:  "name",
			want: scan.SplitResult{Expr: "name"},
		},
		{
			name: "format specifier",
			raw:  "price:C2",
			want: scan.SplitResult{Expr: "price", Format: "C2", HasFormat: true},
		},
		{
			name: "negative alignment",
			raw:  "v,-10",
			want: scan.SplitResult{Expr: "v", Alignment: -10, HasAlignment: true},
		},
		{
			name: "alignment and format",
			raw:  "v,10:N2",
			want: scan.SplitResult{Expr: "v", Alignment: 10, HasAlignment: true, Format: "N2", HasFormat: true},
		},
		{
			name: "ternary colon is not a format separator",
			raw:  `a > b ? "X" : "Y"`,
			want: scan.SplitResult{Expr: `a > b ? "X" : "Y"`},
		},
		{
			name: "parenthesized ternary",
			raw:  `(a > b ? "X" : "Y")`,
			want: scan.SplitResult{Expr: `(a > b ? "X" : "Y")`},
		},
		{
			name: "format colon after ternary",
			raw:  `a > b ? 1 : 2:D3`,
			want: scan.SplitResult{Expr: "a > b ? 1 : 2", Format: "D3", HasFormat: true},
		},
		{
			name: "null coalescing is not a ternary",
			raw:  "a ?? b:N0",
			want: scan.SplitResult{Expr: "a ?? b", Format: "N0", HasFormat: true},
		},
		{
			name: "argument commas are not alignment",
			raw:  "f(a, b)",
			want: scan.SplitResult{Expr: "f(a, b)"},
		},
		{
			name: "alignment after call",
			raw:  "f(a, b), 5",
			want: scan.SplitResult{Expr: "f(a, b)", Alignment: 5, HasAlignment: true},
		},
		{
			name: "non-integer comma stays in expression",
			raw:  "v,abc",
			want: scan.SplitResult{Expr: "v,abc"},
		},
		{
			name: "object literal colon inside braces",
			raw:  `{"a": 1}`,
			want: scan.SplitResult{Expr: `{"a": 1}`},
		},
		{
			name: "date pattern format",
			raw:  "d:yyyy-MM-dd",
			want: scan.SplitResult{Expr: "d", Format: "yyyy-MM-dd", HasFormat: true},
		},
		{
			name: "colon inside string literal",
			raw:  `join(":", xs)`,
			want: scan.SplitResult{Expr: `join(":", xs)`},
		},
		{
			name: "indexer brackets do not trap commas",
			raw:  "m[0],4",
			want: scan.SplitResult{Expr: "m[0]", Alignment: 4, HasAlignment: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, scan.Split(tt.raw))
		})
	}
}
