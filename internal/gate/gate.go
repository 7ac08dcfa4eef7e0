// Package gate screens raw (value, evidence-quote) extractions before they
// are allowed to become trusted observations. It is deliberately independent
// of whatever heuristic produced the value, so one buggy parser cannot
// silently corrupt the canonical dataset.
package gate

import (
	"fmt"
	"strings"

	"github.com/datwatch/verifier/internal/models"
)

// Candidate is a raw extraction awaiting acceptance.
type Candidate struct {
	Value         float64
	EvidenceQuote string
	SourceKind    models.Metric
}

// Verdict is the gate's decision. Reason is set only when OK is false.
type Verdict struct {
	OK     bool
	Reason string
}

// rule is one source-kind's acceptance predicate: a magnitude band and an
// evidence phrase allow-list. Both checks must pass, magnitude first so the
// rejection reason is unambiguous.
type rule struct {
	min, max float64
	// phrases: the quote must contain at least one.
	phrases []string
	// strongMarkers: any one of these alone is sufficient evidence.
	strongMarkers []string
}

// Bands are order-of-magnitude sanity, not precision: a share count below a
// million almost certainly means the source reported thousands, and holdings
// above a hundred million coins exceed any crypto float we track.
var rules = map[models.Metric]rule{
	models.MetricSharesOutstanding: {
		min: 1e6, max: 5e11,
		phrases: []string{
			"shares outstanding", "shares issued", "issued shares",
			"shares in issue", "shares of common stock", "weighted average",
			"basic shares", "diluted shares", "(unaudited)",
		},
		strongMarkers: []string{"entitycommonstocksharesoutstanding"},
	},
	models.MetricCryptoHoldings: {
		min: 1, max: 1e8,
		phrases: []string{
			"btc", "bitcoin", "eth", "ether", "sol", "holdings",
			"treasury", "tokens", "coins",
		},
		strongMarkers: []string{"on-chain", "wallet balance"},
	},
	models.MetricTotalDebt: {
		min: 1e5, max: 1e12,
		phrases: []string{
			"debt", "notes", "aggregate principal", "principal amount",
			"convertible", "borrowings", "loan",
		},
	},
	models.MetricCashReserves: {
		min: 1e4, max: 1e12,
		phrases: []string{
			"cash", "cash and cash equivalents", "short-term investments",
			"liquidity",
		},
	},
	models.MetricPreferredEquity: {
		min: 1e5, max: 1e12,
		phrases: []string{
			"preferred stock", "preferred shares", "preferred equity",
			"liquidation preference",
		},
	},
}

// Accept decides whether a candidate may become a trusted observation. It is
// a pure function: identical input always yields an identical verdict.
func Accept(c Candidate) Verdict {
	r, ok := rules[c.SourceKind]
	if !ok {
		return Verdict{OK: false, Reason: fmt.Sprintf("unknown source kind %q", c.SourceKind)}
	}

	if c.Value < r.min {
		return Verdict{OK: false, Reason: fmt.Sprintf(
			"value %.4g below plausibility floor %.4g for %s (likely a units error)",
			c.Value, r.min, c.SourceKind)}
	}
	if c.Value > r.max {
		return Verdict{OK: false, Reason: fmt.Sprintf(
			"value %.4g above plausibility ceiling %.4g for %s", c.Value, r.max, c.SourceKind)}
	}

	quote := strings.ToLower(c.EvidenceQuote)
	for _, m := range r.strongMarkers {
		if strings.Contains(quote, m) {
			return Verdict{OK: true}
		}
	}
	for _, p := range r.phrases {
		if strings.Contains(quote, p) {
			return Verdict{OK: true}
		}
	}

	return Verdict{OK: false, Reason: fmt.Sprintf(
		"evidence quote contains no recognized %s phrase", c.SourceKind)}
}
