package models

import (
	"time"

	"github.com/google/uuid"
)

// Metric identifies which financial fact about an entity is being tracked.
type Metric string

const (
	MetricCryptoHoldings    Metric = "crypto_holdings"
	MetricSharesOutstanding Metric = "shares_outstanding"
	MetricTotalDebt         Metric = "total_debt"
	MetricCashReserves      Metric = "cash_reserves"
	MetricPreferredEquity   Metric = "preferred_equity"
)

// Metrics lists every tracked metric, in display order.
var Metrics = []Metric{
	MetricCryptoHoldings,
	MetricSharesOutstanding,
	MetricTotalDebt,
	MetricCashReserves,
	MetricPreferredEquity,
}

// ValidMetric reports whether m is one of the tracked metrics.
func ValidMetric(m Metric) bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}

// ActionType is the kind of corporate action.
type ActionType string

const (
	ActionSplit        ActionType = "split"         // ratio > 1, share count increases
	ActionReverseSplit ActionType = "reverse_split" // 0 < ratio < 1, share count decreases
)

// CorporateAction is a split or reverse split changing the number of
// outstanding shares by a fixed ratio as of a date. Records are immutable;
// corrections are new superseding rows, never in-place edits.
//
// Ratio is new-units-per-old-unit: a 2-for-1 split is 2.0, a 1-for-20
// reverse split is 0.05.
type CorporateAction struct {
	EntityID         string     `json:"entity_id"`
	ActionType       ActionType `json:"action_type"`
	Ratio            float64    `json:"ratio"`
	EffectiveDate    time.Time  `json:"effective_date"`
	SourceEvidenceID string     `json:"source_evidence_id"`
	Confidence       float64    `json:"confidence"`
}

// FactObservation is a single as-reported value extracted from one source.
// Ephemeral: consumed within one reconciliation pass and not persisted
// verbatim unless it becomes the new canonical value.
type FactObservation struct {
	EntityID      string    `json:"entity_id"`
	Metric        Metric    `json:"metric"`
	RawValue      float64   `json:"raw_value"`
	Unit          string    `json:"unit"`
	AsOfDate      time.Time `json:"as_of_date"`
	SourceID      string    `json:"source_id"`
	FetchedAt     time.Time `json:"fetched_at"`
	EvidenceQuote string    `json:"evidence_quote"`
	Confidence    float64   `json:"confidence"`
}

// NormalizedObservation is a FactObservation converted to a target basis.
type NormalizedObservation struct {
	FactObservation
	NormalizedValue float64   `json:"normalized_value"`
	TargetBasisDate time.Time `json:"target_basis_date"`
	AppliedRatio    float64   `json:"applied_ratio"`
}

// CanonicalFact is the single trusted value the product surfaces for an
// (entity, metric) pair, always on the current share basis.
type CanonicalFact struct {
	EntityID   string    `json:"entity_id"`
	Metric     Metric    `json:"metric"`
	Value      float64   `json:"value"`
	AsOfDate   time.Time `json:"as_of_date"`
	SourceID   string    `json:"source_id"`
	Confidence float64   `json:"confidence"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DiscrepancyStatus is the review state of a discrepancy record.
type DiscrepancyStatus string

const (
	StatusPending   DiscrepancyStatus = "pending"
	StatusApproved  DiscrepancyStatus = "approved"
	StatusRejected  DiscrepancyStatus = "rejected"
	StatusDismissed DiscrepancyStatus = "dismissed"
)

// SourceValue is one source's contribution to a discrepancy record.
type SourceValue struct {
	Value         float64   `json:"value"`
	AsOfDate      time.Time `json:"as_of_date"`
	EvidenceQuote string    `json:"evidence_quote,omitempty"`
}

// Discrepancy is a recorded disagreement between the canonical value and one
// or more source observations. At most one pending record exists per
// (entity, metric); closed records are retained as tolerance-matching history.
type Discrepancy struct {
	ID           uuid.UUID              `json:"id"`
	EntityID     string                 `json:"entity_id"`
	Metric       Metric                 `json:"metric"`
	SourceValues map[string]SourceValue `json:"source_values"`
	DeviationPct float64                `json:"deviation_pct"`
	Status       DiscrepancyStatus      `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	LastSeenAt   time.Time              `json:"last_seen_at"`
}
