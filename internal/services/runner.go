package services

import (
	"context"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/datwatch/verifier/internal/models"
	"github.com/datwatch/verifier/internal/sources"
)

// Runner fans a reconciliation run out over a bounded worker pool. Units are
// deduplicated before dispatch, so at most one in-flight reconciliation
// exists per (entity, metric) within a run; that is what keeps canonical
// writes serialized without any distributed lock.
type Runner struct {
	svc      *ReconciliationService
	registry *sources.Registry
	workers  int
}

// NewRunner creates a new Runner.
func NewRunner(svc *ReconciliationService, registry *sources.Registry, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{svc: svc, registry: registry, workers: workers}
}

type unit struct {
	entityID string
	metric   models.Metric
}

// Run reconciles the cross product of tickers and metrics. Empty tickers
// means the whole registry; empty metrics means every tracked metric. Unit
// failures are recorded in their slot and never abort the run; only
// cancellation does.
func (r *Runner) Run(ctx context.Context, tickers []string, metrics []models.Metric) (*models.ReconcileResponse, error) {
	units := r.expand(tickers, metrics)
	resp := &models.ReconcileResponse{
		StartedAt: time.Now(),
		Units:     make([]models.ReconcileUnitResult, len(units)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			res, err := r.svc.ReconcileUnit(gctx, u.entityID, u.metric)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.WithFields(log.Fields{"entity": u.entityID, "metric": u.metric}).
					Errorf("reconciliation unit failed: %v", err)
				resp.Units[i] = models.ReconcileUnitResult{
					EntityID: u.entityID,
					Metric:   u.metric,
					Outcome:  "error",
					AdapterErrors: map[string]string{
						"unit": err.Error(),
					},
				}
				return nil
			}
			resp.Units[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.FinishedAt = time.Now()
	return resp, nil
}

// expand builds the deduplicated unit list in a stable order.
func (r *Runner) expand(tickers []string, metrics []models.Metric) []unit {
	if len(tickers) == 0 {
		tickers = r.registry.Tickers()
	}
	if len(metrics) == 0 {
		metrics = models.Metrics
	}

	seenT := map[string]bool{}
	var cleanTickers []string
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seenT[t] {
			continue
		}
		seenT[t] = true
		cleanTickers = append(cleanTickers, t)
	}
	sort.Strings(cleanTickers)

	seenM := map[models.Metric]bool{}
	var cleanMetrics []models.Metric
	for _, m := range metrics {
		if seenM[m] || !models.ValidMetric(m) {
			continue
		}
		seenM[m] = true
		cleanMetrics = append(cleanMetrics, m)
	}

	units := make([]unit, 0, len(cleanTickers)*len(cleanMetrics))
	for _, t := range cleanTickers {
		for _, m := range cleanMetrics {
			units = append(units, unit{entityID: t, metric: m})
		}
	}
	return units
}
