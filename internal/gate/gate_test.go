package gate

import (
	"testing"

	"github.com/datwatch/verifier/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAcceptSharesOutstanding(t *testing.T) {
	testCases := []struct {
		name     string
		value    float64
		quote    string
		expectOK bool
	}{
		{
			name:     "plausible with issued shares phrase",
			value:    770_976_730,
			quote:    "As of October 24, 2025, there were 770,976,730 shares of common stock issued shares and outstanding.",
			expectOK: true,
		},
		{
			name:     "weighted average phrase",
			value:    320_000_000,
			quote:    "weighted average number of shares used in computing net loss per share",
			expectOK: true,
		},
		{
			name:     "unaudited marker",
			value:    41_108_543,
			quote:    "Condensed Consolidated Balance Sheets (unaudited)",
			expectOK: true,
		},
		{
			name:     "below float floor rejected regardless of quote",
			value:    920,
			quote:    "issued shares outstanding as of the record date",
			expectOK: false,
		},
		{
			name:     "implausibly huge count",
			value:    9e12,
			quote:    "shares outstanding",
			expectOK: false,
		},
		{
			name:     "no recognized phrase",
			value:    500_000_000,
			quote:    "the company continues to execute on its strategy",
			expectOK: false,
		},
		{
			name:     "xbrl tag marker alone is sufficient",
			value:    500_000_000,
			quote:    "dei tag entitycommonstocksharesoutstanding as reported",
			expectOK: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := Accept(Candidate{Value: tc.value, EvidenceQuote: tc.quote, SourceKind: models.MetricSharesOutstanding})
			assert.Equal(t, tc.expectOK, v.OK, "reason: %s", v.Reason)
			if !tc.expectOK {
				assert.NotEmpty(t, v.Reason)
			}
		})
	}
}

func TestAcceptMagnitudeCheckedBeforeEvidence(t *testing.T) {
	// A value below the floor must be rejected for magnitude even when the
	// evidence quote is perfect, so the reason is unambiguous.
	v := Accept(Candidate{
		Value:         1000,
		EvidenceQuote: "shares outstanding (unaudited)",
		SourceKind:    models.MetricSharesOutstanding,
	})
	assert.False(t, v.OK)
	assert.Contains(t, v.Reason, "floor")
}

func TestAcceptIsDeterministic(t *testing.T) {
	c := Candidate{
		Value:         12_500,
		EvidenceQuote: "total bitcoin holdings of the treasury",
		SourceKind:    models.MetricCryptoHoldings,
	}
	first := Accept(c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Accept(c))
	}
	assert.True(t, first.OK)
}

func TestAcceptCryptoHoldings(t *testing.T) {
	ok := Accept(Candidate{Value: 649_870, EvidenceQuote: "BTC held in treasury", SourceKind: models.MetricCryptoHoldings})
	assert.True(t, ok.OK)

	tooMany := Accept(Candidate{Value: 5e9, EvidenceQuote: "BTC held in treasury", SourceKind: models.MetricCryptoHoldings})
	assert.False(t, tooMany.OK)
}

func TestAcceptBalanceSheetKinds(t *testing.T) {
	debt := Accept(Candidate{Value: 7_260_000_000, EvidenceQuote: "aggregate principal amount of convertible notes", SourceKind: models.MetricTotalDebt})
	assert.True(t, debt.OK)

	cash := Accept(Candidate{Value: 60_300_000, EvidenceQuote: "cash and cash equivalents", SourceKind: models.MetricCashReserves})
	assert.True(t, cash.OK)

	pref := Accept(Candidate{Value: 1_100_000_000, EvidenceQuote: "liquidation preference of the preferred stock", SourceKind: models.MetricPreferredEquity})
	assert.True(t, pref.OK)
}

func TestAcceptUnknownKind(t *testing.T) {
	v := Accept(Candidate{Value: 1, EvidenceQuote: "x", SourceKind: models.Metric("dividends")})
	assert.False(t, v.OK)
	assert.Contains(t, v.Reason, "unknown source kind")
}
