package brc

import (
	"iter"
	"math/big"
	"strings"
)

// Format renders entries as {name=min/mean/max, ...}. Values are printed with
// at most two decimals, without trailing zeros.
func Format(entries iter.Seq2[string, Summary]) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for name, s := range entries {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(s.String())
	}
	b.WriteByte('}')
	return b.String()
}

// String renders s as min/mean/max in degrees.
func (s Summary) String() string {
	return num2str(s.Min) + "/" + mean2str(s.Sum, s.Count) + "/" + num2str(s.Max)
}

// num2str formats a tenths value, dropping a zero fractional digit.
func num2str(i int64) string {
	return ratio2str(big.NewRat(i, 10))
}

func mean2str(sum, count int64) string {
	if count == 0 {
		return "0"
	}
	denom := new(big.Int).Mul(big.NewInt(count), big.NewInt(10))
	return ratio2str(new(big.Rat).SetFrac(big.NewInt(sum), denom))
}

// ratio2str rounds half away from zero to two decimals.
func ratio2str(r *big.Rat) string {
	s := r.FloatString(2)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
