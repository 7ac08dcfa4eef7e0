package sources

import (
	"fmt"
	"strconv"
	"strings"
)

// scale words and suffixes seen across dashboards and press releases.
// Matching is case-insensitive and longest-token-first.
var magnitudeWords = []struct {
	token string
	mult  float64
}{
	{"trillion", 1e12},
	{"billion", 1e9},
	{"million", 1e6},
	{"thousand", 1e3},
	{"tn", 1e12},
	{"bn", 1e9},
	{"mm", 1e6},
	{"t", 1e12},
	{"b", 1e9},
	{"m", 1e6},
	{"k", 1e3},
}

// ParseNumber converts a human-formatted figure into a float. Accepts comma
// grouping ("770,976,730"), currency prefixes, and scale suffixes or words
// ("2.5 million", "$1.2B", "528,185 BTC" with the unit ignored).
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}

	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSpace(s)

	// Split off the leading numeric token, then look for a scale in the rest.
	i := 0
	for i < len(s) {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' || c == ',' || (i == 0 && c == '-') {
			i++
			continue
		}
		break
	}
	numTok := strings.ReplaceAll(s[:i], ",", "")
	if numTok == "" || numTok == "-" {
		return 0, fmt.Errorf("no numeric token in %q", s)
	}

	val, err := strconv.ParseFloat(numTok, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}

	rest := strings.ToLower(strings.TrimSpace(s[i:]))
	if rest != "" {
		first := strings.Fields(rest)[0]
		first = strings.TrimSuffix(first, ".")
		for _, mw := range magnitudeWords {
			if first == mw.token {
				val *= mw.mult
				break
			}
		}
	}
	return val, nil
}
