// Package format holds the display formatting helpers shared by the API views
// and the report exporter.
package format

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	InvalidDate       = "Invalid Date"
	DefaultDateLayout = "Jan 02, 2006"
	DateTimeLayout    = "Jan 02, 2006 15:04"
	DayKeyLayout      = "2006-01-02"
	MonthKeyLayout    = "2006-01"

	DefaultCurrency = "TZS"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var printer = message.NewPrinter(language.English)

// ParseDate accepts the timestamp shapes the store hands back.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders raw with layout (DefaultDateLayout when empty).
// Unparseable input yields InvalidDate.
func FormatDate(raw, layout string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return InvalidDate
	}
	return FormatTime(t, layout)
}

func FormatDateTime(raw string) string {
	return FormatDate(raw, DateTimeLayout)
}

// FormatTime renders t with layout. The zero time is treated as invalid.
func FormatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return InvalidDate
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return t.Format(layout)
}

// FormatCurrency prints amount with the ISO code prefix, grouped thousands and
// zero to two fraction digits, e.g. "TZS 1,250,000" or "TZS 1,250.5".
func FormatCurrency(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		unit = currency.MustParseISO(DefaultCurrency)
	}

	rounded := amount.Round(2)
	abs := rounded.Abs()
	whole := abs.Truncate(0)

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(unit.String())
	b.WriteByte(' ')
	b.WriteString(printer.Sprintf("%d", whole.IntPart()))

	frac := strings.TrimRight(abs.Sub(whole).StringFixed(2), "0")
	if frac = strings.TrimPrefix(frac, "0"); frac != "." && frac != "" {
		b.WriteString(frac)
	}
	return b.String()
}

// FormatNumber groups thousands with commas.
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// TruncateText cuts s to length runes and appends an ellipsis when it was longer.
func TruncateText(s string, length int) string {
	if length < 0 || utf8.RuneCountInString(s) <= length {
		return s
	}
	return string([]rune(s)[:length]) + "..."
}

// DeviceType guesses the device family from its model name.
func DeviceType(model string) string {
	m := strings.ToLower(model)
	switch {
	case containsAny(m, "iphone", "galaxy", "pixel", "phone"):
		return "phone"
	case containsAny(m, "macbook", "laptop", "thinkpad", "surface laptop"):
		return "laptop"
	case containsAny(m, "ipad", "tablet", "surface pro"):
		return "tablet"
	default:
		return "other"
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
