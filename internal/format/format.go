// Package format turns raw record fields into display values: rupee amounts,
// dates, initials and status classes. Numeric coercion follows the rule every
// write path relies on: anything that is not a finite number becomes 0.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"
)

// ToNumber coerces a raw field value to float64. Missing, empty and
// non-numeric values yield 0; numeric strings yield their value.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case decimal.Decimal:
		return n.InexactFloat64()
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return finite(f)
	case fmt.Stringer:
		return ToNumber(n.String())
	default:
		return 0
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// SafeStr renders a field for substring search; nil becomes "".
func SafeStr(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if !s {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(s)
	}
}

// Currency formats an amount as rupees with Indian digit grouping,
// e.g. ₹1,23,45,678. Fractions keep at most two digits. nil renders ₹0.
func Currency(v any) string {
	if v == nil {
		return "₹0"
	}
	return INR(decimal.NewFromFloat(ToNumber(v)))
}

// INR formats a decimal amount the same way as Currency.
func INR(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	raw := amount.Abs().Round(2).String()

	intPart, frac, _ := strings.Cut(raw, ".")
	frac = strings.TrimRight(frac, "0")

	out := "₹" + indianGrouping(intPart)
	if frac != "" {
		out += "." + frac
	}
	if negative {
		out = "-" + out
	}
	return out
}

// indianGrouping keeps the rightmost three digits together and groups the
// rest in pairs.
func indianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	result := s[n-3:]
	rest := s[:n-3]
	for len(rest) > 2 {
		result = rest[len(rest)-2:] + "," + result
		rest = rest[:len(rest)-2]
	}
	if rest != "" {
		result = rest + "," + result
	}
	return result
}

// Date renders a stored date for display as "05 Mar 2024". Empty values
// render "-" and unparsable strings are returned unchanged.
func Date(v any) string {
	switch d := v.(type) {
	case nil:
		return "-"
	case time.Time:
		if d.IsZero() {
			return "-"
		}
		return timeutil.ToIST(d).Format(timeutil.DisplayLayout)
	case *time.Time:
		if d == nil {
			return "-"
		}
		return Date(*d)
	case string:
		if d == "" {
			return "-"
		}
		t, err := timeutil.ParseDate(d)
		if err != nil {
			return d
		}
		return t.Format(timeutil.DisplayLayout)
	default:
		s := SafeStr(d)
		if s == "" {
			return "-"
		}
		return s
	}
}

// Initials returns up to two upper-case initials, or "?" for an empty name.
func Initials(name string) string {
	if strings.TrimSpace(name) == "" {
		return "?"
	}
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	out := []rune(b.String())
	if len(out) > 2 {
		out = out[:2]
	}
	return string(out)
}

var statusClasses = map[string]string{
	"Interested":     "st-b",
	"Not Interested": "st-r",
	"Converted":      "st-g",
	"Not Converted":  "st-x",
	"Active":         "st-g",
	"Pending":        "st-o",
	"Completed":      "st-g",
	"In Progress":    "st-o",
	"Delayed":        "st-r",
	"Approved":       "st-g",
	"Sent":           "st-g",
	"On Leave":       "st-o",
	"Not Applied":    "st-x",
	"Done":           "st-g",
	"Rejected":       "st-r",
	"Released":       "st-g",
	"New Lead":       "st-b",
	"Follow-up":      "st-o",
	"Negotiating":    "st-p",
	"No Response":    "st-r",
}

// StatusClass maps a status label to its badge style class.
func StatusClass(status string) string {
	if c, ok := statusClasses[status]; ok {
		return c
	}
	return "st-x"
}
