package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxPrice is the exclusive upper bound of a price, matching DECIMAL(7,2).
const MaxPrice Price = 100000_00

var ErrInvalidPrice = errors.New("a valid number with at most 2 decimal places is required")

// Price is a fixed-point amount stored in hundredths.
type Price int64

// ParsePrice parses a decimal string such as "20", "20.5" or "20.00".
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}

	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidPrice
	}
	if len(frac) > 2 {
		// Allow trailing zeros beyond the second place, e.g. 20.000.
		if strings.TrimRight(frac[2:], "0") != "" {
			return 0, ErrInvalidPrice
		}
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || !isDigits(frac) || len(whole) > 15 {
		return 0, ErrInvalidPrice
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}

	p := Price(w*100 + f)
	if neg {
		p = -p
	}
	return p, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// String renders the price with exactly two decimal places.
func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the price as a decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either a JSON number or a numeric string.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ErrInvalidPrice
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidPrice
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return ErrInvalidPrice
		}
		s = n.String()
	}

	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer for DECIMAL columns.
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner for DECIMAL columns.
func (p *Price) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := ParsePrice(string(v))
		if err != nil {
			return fmt.Errorf("scanning price %q: %w", v, err)
		}
		*p = parsed
	case string:
		parsed, err := ParsePrice(v)
		if err != nil {
			return fmt.Errorf("scanning price %q: %w", v, err)
		}
		*p = parsed
	case int64:
		*p = Price(v * 100)
	case float64:
		parsed, err := ParsePrice(strconv.FormatFloat(v, 'f', 2, 64))
		if err != nil {
			return fmt.Errorf("scanning price %v: %w", v, err)
		}
		*p = parsed
	case nil:
		*p = 0
	default:
		return fmt.Errorf("cannot scan %T into Price", src)
	}
	return nil
}
