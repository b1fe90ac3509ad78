package core

import (
	"errors"
	"regexp"
)

// ErrNoAmount reports that no usable number was found in the text.
var ErrNoAmount = errors.New("no amount found")

// amountPattern matches the first numeric token: digits with optional
// thousands separators and decimal part, optionally followed by a unit
// suffix (k, or the Thai words for thousand / ten-thousand /
// hundred-thousand).
var amountPattern = regexp.MustCompile(`(\d[\d,]*\.?\d*)\s*([kK]|พัน|หมื่น|แสน)?`)

// unitFactors maps a unit suffix to its whole-unit multiplier.
var unitFactors = map[string]int64{
	"k":    1_000,
	"K":    1_000,
	"พัน":  1_000,
	"หมื่น": 10_000,
	"แสน":  100_000,
}

// ExtractAmount scans text for the first numeric token and returns it as
// money. Only the first match is used; any further numbers in the text are
// ignored. Returns ErrNoAmount when no digits occur or the parsed amount
// is not positive.
func ExtractAmount(text string) (Money, error) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return Money{}, ErrNoAmount
	}
	cents, err := ParseDecimalToCents(m[1])
	if err != nil {
		return Money{}, ErrNoAmount
	}
	amount := Money{Cents: cents}
	if factor, ok := unitFactors[m[2]]; ok {
		amount = amount.MulUnit(factor)
	}
	if amount.Cents <= 0 {
		return Money{}, ErrNoAmount
	}
	return amount, nil
}
