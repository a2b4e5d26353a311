package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/number"
)

// SpecError reports a format specifier that could not be applied to the
// resolved value. The rendering it accompanies is the default-conversion
// fallback, which is always usable.
type SpecError struct {
	Specifier string
	Reason    string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("format specifier %q: %s", e.Specifier, e.Reason)
}

// Render formats a resolved value: specifier first (when present), then
// alignment. A specifier failure never loses the value; the returned string
// falls back to the default conversion and the error describes the failure.
func Render(v any, spec string, align int, hasAlign bool, c Culture) (string, error) {
	var s string
	var err error

	if v == nil {
		s = ""
	} else if spec != "" {
		s, err = applySpec(v, spec, c)
		if err != nil {
			s = defaultString(v, c)
		}
	} else {
		s = defaultString(v, c)
	}

	if hasAlign {
		s = pad(s, align)
	}
	return s, err
}

// pad applies field-width alignment to an already formatted string.
// Positive widths right-align (pad on the left); negative widths
// left-align. Width is measured in runes.
func pad(s string, align int) string {
	width := align
	if width < 0 {
		width = -width
	}
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	if align > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func applySpec(v any, spec string, c Culture) (string, error) {
	if t, ok := timeValue(v); ok {
		return formatTime(t, spec), nil
	}

	letter := spec[0]
	digits, digitsGiven, ok := specDigits(spec)
	if !ok {
		return "", &SpecError{Specifier: spec, Reason: "unrecognized specifier"}
	}

	f, isNum := floatValue(v)
	i, isInt := intValue(v)

	switch letter {
	case 'C', 'c':
		if !isNum {
			return "", &SpecError{Specifier: spec, Reason: "currency format requires a number"}
		}
		if !digitsGiven {
			digits = 2
		}
		body := c.printer.Sprintf("%v", number.Decimal(math.Abs(f), number.Scale(digits)))
		if f < 0 {
			return "-" + c.currencySymbol + body, nil
		}
		return c.currencySymbol + body, nil
	case 'N', 'n':
		if !isNum {
			return "", &SpecError{Specifier: spec, Reason: "number format requires a number"}
		}
		if !digitsGiven {
			digits = 2
		}
		return c.printer.Sprintf("%v", number.Decimal(f, number.Scale(digits))), nil
	case 'F', 'f':
		if !isNum {
			return "", &SpecError{Specifier: spec, Reason: "fixed-point format requires a number"}
		}
		if !digitsGiven {
			digits = 2
		}
		return c.localizeDecimal(strconv.FormatFloat(f, 'f', digits, 64)), nil
	case 'D', 'd':
		if !isInt {
			return "", &SpecError{Specifier: spec, Reason: "decimal format requires an integer"}
		}
		if digits > 0 {
			if i < 0 {
				return "-" + fmt.Sprintf("%0*d", digits, -i), nil
			}
			return fmt.Sprintf("%0*d", digits, i), nil
		}
		return strconv.FormatInt(i, 10), nil
	case 'E', 'e':
		if !isNum {
			return "", &SpecError{Specifier: spec, Reason: "scientific format requires a number"}
		}
		if !digitsGiven {
			digits = 6
		}
		s := strconv.FormatFloat(f, byte(letter), digits, 64)
		return c.localizeDecimal(s), nil
	case 'P', 'p':
		if !isNum {
			return "", &SpecError{Specifier: spec, Reason: "percent format requires a number"}
		}
		if !digitsGiven {
			digits = 2
		}
		return c.printer.Sprintf("%v", number.Decimal(f*100, number.Scale(digits))) + "%", nil
	case 'X', 'x':
		if !isInt {
			return "", &SpecError{Specifier: spec, Reason: "hex format requires an integer"}
		}
		verb := "%X"
		if letter == 'x' {
			verb = "%x"
		}
		if digits > 0 {
			verb = "%0*" + verb[1:]
			return fmt.Sprintf(verb, digits, i), nil
		}
		return fmt.Sprintf(verb, i), nil
	case 'G', 'g':
		return defaultString(v, c), nil
	}
	return "", &SpecError{Specifier: spec, Reason: "unrecognized specifier"}
}

// specDigits splits a standard specifier into its letter and optional digit
// count. Multi-character non-numeric suffixes are not a standard numeric
// specifier (they are handled as date patterns before this point).
func specDigits(spec string) (digits int, given, ok bool) {
	if len(spec) == 1 {
		return 0, false, true
	}
	n, err := strconv.Atoi(spec[1:])
	if err != nil || n < 0 {
		return 0, false, false
	}
	return n, true, true
}

// defaultString is the culture-aware default conversion used when no
// specifier is present. Numbers use the culture's decimal separator without
// grouping; they deliberately do not use exponent notation for integral
// values.
func defaultString(v any, c Culture) string {
	if v == nil {
		return ""
	}
	if t, ok := timeValue(v); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	switch tv := v.(type) {
	case string:
		return tv
	case bool:
		return strconv.FormatBool(tv)
	case float64:
		return c.localizeDecimal(strconv.FormatFloat(tv, 'f', -1, 64))
	case float32:
		return c.localizeDecimal(strconv.FormatFloat(float64(tv), 'f', -1, 32))
	case error:
		return tv.Error()
	case fmt.Stringer:
		return tv.String()
	}
	if i, ok := intValue(v); ok {
		return strconv.FormatInt(i, 10)
	}
	return fmt.Sprintf("%v", v)
}

func timeValue(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

func intValue(v any) (int64, bool) {
	switch tv := v.(type) {
	case int:
		return int64(tv), true
	case int8:
		return int64(tv), true
	case int16:
		return int64(tv), true
	case int32:
		return int64(tv), true
	case int64:
		return tv, true
	case uint:
		return int64(tv), true
	case uint8:
		return int64(tv), true
	case uint16:
		return int64(tv), true
	case uint32:
		return int64(tv), true
	case uint64:
		return int64(tv), true
	case float64:
		if tv == math.Trunc(tv) {
			return int64(tv), true
		}
	case float32:
		if float64(tv) == math.Trunc(float64(tv)) {
			return int64(tv), true
		}
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch tv := v.(type) {
	case float64:
		return tv, true
	case float32:
		return float64(tv), true
	}
	if i, ok := intValue(v); ok {
		return float64(i), true
	}
	return 0, false
}
