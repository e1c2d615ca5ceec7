package brc

import (
	"fmt"
	"math"
)

// ParseTenths parses input as a 1 decimal place number and returns it as a
// count of tenths, i.e: -12.3 -> -123.
// The input must match -?[0-9]+\.[0-9] exactly.
func ParseTenths(input []byte) (int64, error) {
	var value int64
	var negative, decimalSeen bool
	var intDigits, decimalPlaces int

	for i, b := range input {
		switch {
		case i == 0 && b == '-':
			negative = true
		case b >= '0' && b <= '9':
			if decimalSeen {
				decimalPlaces++
				if decimalPlaces > 1 {
					return 0, fmt.Errorf("%w: more than one decimal place: %q", ErrMalformedRecord, input)
				}
			} else {
				intDigits++
			}
			d := int64(b - '0')
			if value > (math.MaxInt64-d)/10 {
				return 0, fmt.Errorf("%w: %q", ErrNumericOverflow, input)
			}
			value = value*10 + d
		case b == '.':
			if decimalSeen || intDigits == 0 {
				return 0, fmt.Errorf("%w: misplaced dot: %q", ErrMalformedRecord, input)
			}
			decimalSeen = true
		default:
			return 0, fmt.Errorf("%w: invalid byte %q in %q", ErrMalformedRecord, b, input)
		}
	}

	if decimalPlaces != 1 {
		return 0, fmt.Errorf("%w: expected one decimal place: %q", ErrMalformedRecord, input)
	}

	if negative {
		value = -value
	}
	return value, nil
}
