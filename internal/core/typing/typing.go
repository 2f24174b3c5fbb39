// Package typing coerces raw spreadsheet cells into currency amounts and dates.
// Coercion never fails loudly: anything that cannot be read becomes null.
package typing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Excel serials accepted as dates (1954-10-03 .. 2119-01-10). Other bare numbers
// are not dates.
const (
	minDateSerial = 20000
	maxDateSerial = 80000
)

var nullTokens = map[string]struct{}{
	"#N/A":    {},
	"N/A":     {},
	"NA":      {},
	"NAN":     {},
	"NULL":    {},
	"NONE":    {},
	"#VALUE!": {},
	"#REF!":   {},
	"#DIV/0!": {},
	"#NAME?":  {},
	"#NUM!":   {},
	"#NULL!":  {},
}

// IsNullCell reports whether a raw cell holds no value: blank, whitespace or one
// of the spreadsheet "not available" markers.
func IsNullCell(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := nullTokens[strings.ToUpper(s)]
	return ok
}

var currencyReplacer = strings.NewReplacer(
	"MXN", "",
	"USD", "",
	"MN", "",
	"$", "",
	" ", "",
	"\u00a0", "",
	"\t", "",
)

var plainNumberRegex = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseCurrency reads a money-like value. The second result is false for empty,
// non-numeric or non-finite input.
func ParseCurrency(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		f, _ := v.Float64()
		return finite(f)
	case string:
		return parseCurrencyText(v)
	case time.Time:
		return 0, false
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseCurrencyText(val string) (float64, bool) {
	if IsNullCell(val) {
		return 0, false
	}
	s := currencyReplacer.Replace(strings.ToUpper(strings.TrimSpace(val)))
	if s == "" {
		return 0, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	switch {
	case strings.HasPrefix(s, "-"):
		neg = !neg
		s = strings.TrimPrefix(s, "-")
	case strings.HasPrefix(s, "+"):
		s = strings.TrimPrefix(s, "+")
	}

	s = normalizeSeparators(s)
	if !plainNumberRegex.MatchString(s) {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if neg {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return finite(f)
}

// normalizeSeparators leaves a single '.' as decimal point. When both separators
// appear the last one is the decimal mark; a lone comma is a decimal mark unless it
// is followed by exactly three digits.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// Month-first layouts come before day-first ones, so an ambiguous "03/04/2025"
// reads as March 4th.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-2006",
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04",
	"02-01-2006",
	"1/2/06",
	"2/1/06",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
}

var spanishMonthRegex = regexp.MustCompile(`\b(enero|ene|febrero|feb|marzo|mar|abril|abr|mayo|may|junio|jun|julio|jul|agosto|ago|septiembre|setiembre|sept|sep|set|octubre|oct|noviembre|nov|diciembre|dic)\b`)

var spanishMonths = map[string]string{
	"enero": "Jan", "ene": "Jan",
	"febrero": "Feb", "feb": "Feb",
	"marzo": "Mar", "mar": "Mar",
	"abril": "Apr", "abr": "Apr",
	"mayo": "May", "may": "May",
	"junio": "Jun", "jun": "Jun",
	"julio": "Jul", "jul": "Jul",
	"agosto": "Aug", "ago": "Aug",
	"septiembre": "Sep", "setiembre": "Sep", "sept": "Sep", "sep": "Sep", "set": "Sep",
	"octubre": "Oct", "oct": "Oct",
	"noviembre": "Nov", "nov": "Nov",
	"diciembre": "Dec", "dic": "Dec",
}

// ParseDate reads a date-like value. Times of day are discarded.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return dateOnly(v), true
	case float64:
		return serialDate(v)
	case int:
		return serialDate(float64(v))
	case int64:
		return serialDate(float64(v))
	case string:
		return parseDateText(v)
	}
	return time.Time{}, false
}

func parseDateText(val string) (time.Time, bool) {
	if IsNullCell(val) {
		return time.Time{}, false
	}
	s := strings.TrimSpace(val)

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialDate(f)
	}
	if t, ok := tryLayouts(s); ok {
		return t, true
	}

	translated := strings.ToLower(s)
	translated = strings.ReplaceAll(translated, " de ", " ")
	translated = strings.ReplaceAll(translated, ".", "")
	translated = spanishMonthRegex.ReplaceAllStringFunc(translated, func(m string) string {
		return spanishMonths[m]
	})
	if translated != s {
		return tryLayouts(translated)
	}
	return time.Time{}, false
}

func tryLayouts(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func serialDate(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || serial < minDateSerial || serial > maxDateSerial {
		return time.Time{}, false
	}
	return dateOnly(ExcelSerialToDate(serial)), true
}

// ExcelSerialToDate converts a 1900-system serial to a time.
func ExcelSerialToDate(serial float64) time.Time {
	// base Excel serial -> 1899-12-30
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	frac := serial - float64(int64(serial))
	duration := time.Duration(int64(serial)*24) * time.Hour
	duration += time.Duration(frac * 24 * float64(time.Hour))
	return base.Add(duration)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
