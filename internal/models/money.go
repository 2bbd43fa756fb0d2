package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in minor units (1/100 of the currency). It is stored in
// DECIMAL(10,2) columns and rendered as a fixed two-decimal string.
type Money int64

// ParseMoney parses "1000", "1000.5" or "1000.50". More than two fractional
// digits are rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("money: empty amount")
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}
	if hasFrac && len(frac) > 2 {
		trimmed := strings.TrimRight(frac, "0")
		if len(trimmed) > 2 {
			return 0, fmt.Errorf("money: at most 2 decimal places allowed in %q", s)
		}
		frac = trimmed
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}
	v := w*100 + f
	if neg {
		v = -v
	}
	return Money(v), nil
}

// MoneyFromFloat rounds a float amount to the nearest minor unit.
func MoneyFromFloat(f float64) Money {
	return Money(math.Round(f * 100))
}

func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both "1000.00" and 1000.00.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Scan handles DECIMAL values as returned by MySQL ([]byte) and SQLite
// (int64 or float64).
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = 0
	case []byte:
		p, err := ParseMoney(string(v))
		if err != nil {
			return err
		}
		*m = p
	case string:
		p, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = p
	case int64:
		*m = Money(v * 100)
	case float64:
		*m = MoneyFromFloat(v)
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// NullMoney is a Money that may be NULL.
type NullMoney struct {
	Money Money
	Valid bool
}

func (n *NullMoney) Scan(src any) error {
	if src == nil {
		n.Money, n.Valid = 0, false
		return nil
	}
	n.Valid = true
	return n.Money.Scan(src)
}

func (n NullMoney) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Money.Value()
}

// Ptr returns nil for NULL.
func (n NullMoney) Ptr() *Money {
	if !n.Valid {
		return nil
	}
	m := n.Money
	return &m
}

// MoneyPtrValue converts an optional amount to a driver value.
func MoneyPtrValue(m *Money) any {
	if m == nil {
		return nil
	}
	return m.String()
}
