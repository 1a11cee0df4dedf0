// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer minor units (kuruş). Floating point appears
// only at display boundaries.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in minor currency units.
type Money struct {
	Cents int64
}

var trPrinter = message.NewPrinter(language.Turkish)

// maxExponent bounds amounts like "1e999999" that would not fit in int64
// minor units anyway.
const maxExponent = 15

// NewMoney builds Money from whole currency units.
func NewMoney(units int64) Money {
	return Money{Cents: units * 100}
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the value in currency units for display purposes.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

func moneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// MarshalJSON writes the amount as a plain decimal number of currency units,
// e.g. 1500 or 12.5.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a string. Strings follow
// ParseAmount and fall back to zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = ParseAmount(s)
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil || d.Exponent() > maxExponent {
		return ErrInvalidAmount
	}
	*m = moneyFromDecimal(d)
	return nil
}

// ParseTurkishNumber accepts either '.' or ',' as decimal separator and
// reads the longest leading number, so "12abc" is 12 and "1.234,56" is
// 1.234. It returns 0 when there is no leading number.
func ParseTurkishNumber(s string) float64 {
	d, ok := parseDecimal(s)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

// ParseAmount is ParseTurkishNumber rounded half away from zero to minor units.
func ParseAmount(s string) Money {
	d, ok := parseDecimal(s)
	if !ok {
		return Money{}
	}
	return moneyFromDecimal(d)
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	// Only the first comma is treated as the decimal separator.
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	s = numericPrefix(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Exponent() > maxExponent {
		return decimal.Zero, false
	}
	return d, true
}

// numericPrefix returns the longest prefix of s shaped like
// [+-]digits[.digits][e[+-]digits], or "" when s does not start with a
// number.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intStart := i
	i = skipDigits(s, i)
	digits := i - intStart
	if i < len(s) && s[i] == '.' {
		j := skipDigits(s, i+1)
		digits += j - (i + 1)
		i = j
	}
	if digits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if k := skipDigits(s, j); k > j {
			i = k
		}
	}
	return strings.TrimSuffix(s[:i], ".")
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

// FormatCurrency renders the amount rounded to whole lira with Turkish digit
// grouping, e.g. "₺1.500" or "-₺250".
func FormatCurrency(m Money) string {
	units := m.Decimal().Round(0).IntPart()
	if units < 0 {
		return "-₺" + trPrinter.Sprintf("%d", -units)
	}
	return "₺" + trPrinter.Sprintf("%d", units)
}
