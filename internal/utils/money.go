package utils

import (
	"encoding/json" // Numbers decoded with UseNumber
	"errors"        // Error values
	"fmt"           // Error formatting
	"strings"       // Whitespace trimming

	"github.com/shopspring/decimal" // Fixed-point amounts
)

// ErrNotNumeric is returned for amounts that are not numbers
var ErrNotNumeric = errors.New("amount is not numeric")

// AmountScale is the number of decimals kept, matching the decimal(10,2) column
const AmountScale = 2

// ParseAmount converts a decoded JSON value into a decimal rounded to
// AmountScale. Numbers and numeric strings are accepted.
func ParseAmount(v any) (decimal.Decimal, error) {
	var s string
	switch val := v.(type) {
	case json.Number:
		s = val.String()
	case string:
		s = strings.TrimSpace(val)
	case float64:
		return decimal.NewFromFloat(val).Round(AmountScale), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}
	if s == "" {
		return decimal.Zero, ErrNotNumeric
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return d.Round(AmountScale), nil // Match the column scale
}

// FormatAmount renders d with exactly two decimals
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}
