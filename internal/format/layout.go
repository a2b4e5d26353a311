package format

import (
	"strings"
	"time"
)

// standardTimeLayouts maps the supported single-letter date/time specifiers
// to fixed layouts.
var standardTimeLayouts = map[string]string{
	"d": "2006-01-02",
	"D": "Monday, 02 January 2006",
	"t": "15:04",
	"T": "15:04:05",
	"s": "2006-01-02T15:04:05",
	"g": "2006-01-02 15:04",
	"G": "2006-01-02 15:04:05",
	"u": "2006-01-02 15:04:05Z",
}

// patternTokens translates custom date-pattern tokens to Go layout
// fragments; longest token first, so "yyyy" wins over "yy".
var patternTokens = []struct {
	pat    string
	layout string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"fff", "000"},
	{"ff", "00"},
	{"f", "0"},
	{"tt", "PM"},
	{"zzz", "-07:00"},
	{"zz", "-07"},
	{"z", "-7"},
}

// formatTime renders a time value under either a standard single-letter
// specifier or a custom pattern such as "yyyy-MM-dd HH:mm:ss". Single-quoted
// runs inside a pattern are emitted verbatim.
func formatTime(t time.Time, spec string) string {
	if layout, ok := standardTimeLayouts[spec]; ok {
		return t.Format(layout)
	}
	return t.Format(translatePattern(spec))
}

func translatePattern(pat string) string {
	var b strings.Builder
	i := 0
	for i < len(pat) {
		if pat[i] == '\'' {
			end := strings.IndexByte(pat[i+1:], '\'')
			if end < 0 {
				b.WriteString(pat[i+1:])
				break
			}
			b.WriteString(pat[i+1 : i+1+end])
			i += end + 2
			continue
		}
		matched := false
		for _, tok := range patternTokens {
			if strings.HasPrefix(pat[i:], tok.pat) {
				// Fractional seconds attach to the previous component with
				// a dot in Go layouts.
				if tok.pat[0] == 'f' && b.Len() > 0 && strings.HasSuffix(b.String(), "05") {
					b.WriteByte('.')
				}
				b.WriteString(tok.layout)
				i += len(tok.pat)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pat[i])
			i++
		}
	}
	return b.String()
}
