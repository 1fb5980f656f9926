package finviz

import (
	"math"
	"strconv"
	"strings"
)

var suffixes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

// parseNumber reads FinViz cell values: "2.40B", "850.5K", "1,234", "2.10%".
// Percentages become fractions. "-" and blanks are unknown.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return nil
	}

	scale := 1.0
	switch last := s[len(s)-1]; {
	case last == '%':
		scale = 0.01
		s = s[:len(s)-1]
	case suffixes[last] != 0:
		scale = suffixes[last]
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v *= scale
	return &v
}

// parseCount is parseNumber rounded to a whole count
func parseCount(s string) *int64 {
	v := parseNumber(s)
	if v == nil {
		return nil
	}
	n := int64(math.Round(*v))
	return &n
}

func firstToken(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonBlank(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
