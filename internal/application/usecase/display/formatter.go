package display

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders p with two decimals and thousands separators.
// Rounding is half away from zero on the shortest decimal form of p,
// so 999.995 becomes "1,000.00".
func FormatPrice(p float64) string {
	s := decimal.NewFromFloat(p).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var sb strings.Builder
	sb.Grow(len(s) + len(intPart)/3 + 1)
	sb.WriteString(sign)
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte(intPart[i])
	}
	sb.WriteString(frac)
	return sb.String()
}
