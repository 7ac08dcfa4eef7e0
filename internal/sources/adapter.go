// Package sources holds the per-source adapters that turn external filings,
// dashboards and APIs into FactObservations. Every adapter shares one polite
// fetch client and screens its extractions through the gate before handing
// anything to the reconciliation engine.
package sources

import (
	"context"

	"github.com/datwatch/verifier/internal/models"
)

// Adapter is one external source of fact observations.
//
// Fetch returns (nil, nil) when the source has no signal for the pair: the
// page loaded but the metric is absent, or an extraction failed the gate.
// Errors are reserved for the source being unreachable or unparseable.
type Adapter interface {
	// Name is the stable source identifier recorded on observations and
	// discrepancy source values.
	Name() string
	// Supports reports whether the adapter can ever produce the metric.
	Supports(metric models.Metric) bool
	Fetch(ctx context.Context, entityID string, metric models.Metric) (*models.FactObservation, error)
}
