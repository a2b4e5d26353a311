// Package format renders resolved values as text: it applies optional
// format specifiers under a culture, then alignment padding. Nil always
// renders as the empty string. A failing specifier falls back to the
// culture-aware default conversion; the error is reported alongside the
// usable fallback so the caller can decide whether to escalate it.
package format

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Culture carries the locale used for numeric and date rendering, plus a
// few values derived from it once at construction.
type Culture struct {
	Tag            language.Tag
	printer        *message.Printer
	decimalSep     string
	currencySymbol string
}

// commonSymbols maps frequent currency units to their narrow symbols. The
// generic sign is used when the unit is unknown or has no common symbol.
var commonSymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"KRW": "₩",
	"INR": "₹",
	"UAH": "₴",
	"RUB": "₽",
	"PLN": "zł",
	"CHF": "CHF",
	"AUD": "$",
	"CAD": "$",
	"NZD": "$",
	"BRL": "R$",
}

// NewCulture resolves a BCP-47 tag name ("en-US", "de-DE", ...) into a
// Culture. An empty name selects English, the process default.
func NewCulture(name string) (Culture, error) {
	tag := language.English
	if name != "" {
		parsed, err := language.Parse(name)
		if err != nil {
			return Culture{}, err
		}
		tag = parsed
	}

	c := Culture{Tag: tag, printer: message.NewPrinter(tag)}

	// Probe the locale's decimal separator once instead of reaching into
	// CLDR tables directly.
	probe := c.printer.Sprintf("%v", number.Decimal(1.5))
	c.decimalSep = "."
	if len(probe) == 3 {
		c.decimalSep = probe[1:2]
	}

	c.currencySymbol = "¤"
	if unit, conf := currency.FromTag(tag); conf != language.No {
		if sym, ok := commonSymbols[unit.String()]; ok {
			c.currencySymbol = sym
		} else if code := unit.String(); code != "XXX" {
			c.currencySymbol = code + " "
		}
	}
	return c, nil
}

// localizeDecimal swaps the invariant decimal point for the culture's
// separator in a number formatted by strconv.
func (c Culture) localizeDecimal(s string) string {
	if c.decimalSep == "." {
		return s
	}
	return strings.Replace(s, ".", c.decimalSep, 1)
}
