package filter

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimal normalizes a locale-formatted decimal string and parses it.
// Accepted shapes include "45000", "45 000", "1.234,56", "1,234.56" and "12,5".
// When both separators appear the last one is the fractional separator. A lone
// separator is a thousands grouping when it splits a 1-3 digit lead (not 0)
// from exactly three digits ("45.000", "45,000"), and fractional otherwise
// ("12,5", "99.90", "0.125"). A repeated separator is a thousands grouping.
// The second return value is false for empty or malformed input.
func ParseDecimal(raw string) (float64, bool) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || isThousandsGroup(s, lastComma) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || isThousandsGroup(s, lastDot) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// isThousandsGroup reports whether the separator at i groups thousands.
func isThousandsGroup(s string, i int) bool {
	lead := strings.TrimLeft(s[:i], "+-")
	frac := s[i+1:]
	return len(lead) >= 1 && len(lead) <= 3 && lead[0] != '0' && allDigits(lead) &&
		len(frac) == 3 && allDigits(frac)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
