package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/datwatch/verifier/internal/cache"
	"github.com/datwatch/verifier/internal/corpactions"
	"github.com/datwatch/verifier/internal/models"
	"github.com/datwatch/verifier/internal/sources"
)

// Unit outcomes recorded on ReconcileUnitResult.
const (
	OutcomeNoSignal     = "no_signal"
	OutcomeMatch        = "match"
	OutcomeAutoApproved = "auto_approved"
	OutcomeSuppressed   = "suppressed"
	OutcomePending      = "pending"
)

// ActionStore reads an entity's corporate actions, ascending by effective date.
type ActionStore interface {
	ListActions(ctx context.Context, entityID string) ([]models.CorporateAction, error)
}

// CanonicalStore reads and writes the trusted value per (entity, metric).
type CanonicalStore interface {
	Get(ctx context.Context, entityID string, metric models.Metric) (*models.CanonicalFact, error)
	Put(ctx context.Context, f *models.CanonicalFact) error
}

// DiscrepancyStore is the engine's slice of the discrepancy history store.
type DiscrepancyStore interface {
	GetOpen(ctx context.Context, entityID string, metric models.Metric) (*models.Discrepancy, error)
	GetLastDismissed(ctx context.Context, entityID string, metric models.Metric, since time.Time) (*models.Discrepancy, error)
	Upsert(ctx context.Context, d *models.Discrepancy) error
}

// ReconciliationService runs one (entity, metric) unit: fan out to the source
// adapters, normalize what they return, diff against canonical, and advance
// the discrepancy state machine. Store writes happen only after every adapter
// has settled, so a cancelled unit commits nothing.
type ReconciliationService struct {
	adapters       []sources.Adapter
	actions        ActionStore
	actionCache    *cache.ActionCache
	canonical      CanonicalStore
	discrepancies  DiscrepancyStore
	policy         Policy
	adapterTimeout time.Duration
	now            func() time.Time
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	adapters []sources.Adapter,
	actions ActionStore,
	canonical CanonicalStore,
	discrepancies DiscrepancyStore,
	policy Policy,
) *ReconciliationService {
	return &ReconciliationService{
		adapters:       adapters,
		actions:        actions,
		actionCache:    cache.NewActionCache(10 * time.Minute),
		canonical:      canonical,
		discrepancies:  discrepancies,
		policy:         policy,
		adapterTimeout: 2 * time.Minute,
		now:            time.Now,
	}
}

type adapterResult struct {
	name string
	obs  *models.FactObservation
	err  error
}

// ReconcileUnit reconciles one (entity, metric) pair. Store errors abort the
// unit; adapter and normalization failures are recorded per source and never
// fail the pass.
func (s *ReconciliationService) ReconcileUnit(ctx context.Context, entityID string, metric models.Metric) (*models.ReconcileUnitResult, error) {
	if !models.ValidMetric(metric) {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	result := &models.ReconcileUnitResult{
		EntityID:      entityID,
		Metric:        metric,
		AdapterErrors: map[string]string{},
	}

	results := s.fanOut(ctx, entityID, metric)

	// All adapters have settled. A cancelled run stops here, before any
	// store write, so no partial state is committed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var observations []models.FactObservation
	for _, r := range results {
		if r.err != nil {
			result.AdapterErrors[r.name] = r.err.Error()
			log.WithFields(log.Fields{"entity": entityID, "metric": metric, "source": r.name}).
				Warnf("adapter failed: %v", r.err)
			continue
		}
		if r.obs != nil {
			observations = append(observations, *r.obs)
		}
	}

	normalized, err := s.normalizeAll(ctx, entityID, metric, observations, result.AdapterErrors)
	if err != nil {
		return nil, err
	}
	result.Observations = len(normalized)

	if len(normalized) == 0 {
		// Zero usable observations leaves canonical and any open
		// discrepancy untouched. Distinct from a confirmed match.
		result.Outcome = OutcomeNoSignal
		return result, nil
	}

	canon, err := s.canonical.Get(ctx, entityID, metric)
	if err != nil {
		return nil, fmt.Errorf("load canonical: %w", err)
	}
	canonValue := 0.0
	if canon != nil {
		canonValue = canon.Value
	}

	var deviating []models.NormalizedObservation
	for _, n := range normalized {
		dev := s.policy.DeviationPct(n.NormalizedValue, canonValue)
		if dev > result.MaxDeviation {
			result.MaxDeviation = dev
		}
		if s.policy.Classify(dev) != SeverityNone {
			deviating = append(deviating, n)
		}
	}

	if len(deviating) == 0 {
		result.Outcome = OutcomeMatch
		return result, nil
	}

	suppressed, err := s.applyDismissalTolerance(ctx, entityID, metric, deviating)
	if err != nil {
		return nil, err
	}
	if len(suppressed) == 0 {
		result.Outcome = OutcomeSuppressed
		return result, nil
	}

	if ok, winner := s.autoApprovable(normalized); ok {
		fact := &models.CanonicalFact{
			EntityID:   entityID,
			Metric:     metric,
			Value:      winner.NormalizedValue,
			AsOfDate:   winner.AsOfDate,
			SourceID:   winner.SourceID,
			Confidence: winner.Confidence,
			UpdatedAt:  s.now(),
		}
		if err := s.canonical.Put(ctx, fact); err != nil {
			return nil, fmt.Errorf("write canonical: %w", err)
		}
		log.WithFields(log.Fields{"entity": entityID, "metric": metric, "value": fact.Value, "source": fact.SourceID}).
			Info("auto-approved canonical update")
		result.Outcome = OutcomeAutoApproved
		return result, nil
	}

	d := s.buildDiscrepancy(entityID, metric, normalized, result.MaxDeviation)
	if err := s.discrepancies.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("upsert discrepancy: %w", err)
	}
	result.Outcome = OutcomePending
	result.DiscrepancyID = d.ID.String()
	return result, nil
}

// fanOut runs every supporting adapter concurrently and waits for all of
// them. One slow or failing source must not block or fail the others, so
// each adapter gets its own timeout and errors stay in its slot.
func (s *ReconciliationService) fanOut(ctx context.Context, entityID string, metric models.Metric) []adapterResult {
	results := make([]adapterResult, len(s.adapters))
	var g errgroup.Group
	for i, ad := range s.adapters {
		if !ad.Supports(metric) {
			continue
		}
		i, ad := i, ad
		g.Go(func() error {
			actx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
			defer cancel()
			obs, err := ad.Fetch(actx, entityID, metric)
			results[i] = adapterResult{name: ad.Name(), obs: obs, err: err}
			return nil
		})
	}
	g.Wait()

	out := results[:0]
	for _, r := range results {
		if r.name != "" {
			out = append(out, r)
		}
	}
	return out
}

// normalizeAll converts observations to the current share basis. Only share
// counts move under splits; the other metrics pass through unchanged. A bad
// action window drops that single observation, not the unit.
func (s *ReconciliationService) normalizeAll(ctx context.Context, entityID string, metric models.Metric, observations []models.FactObservation, adapterErrors map[string]string) ([]models.NormalizedObservation, error) {
	var actions []models.CorporateAction
	if metric == models.MetricSharesOutstanding && len(observations) > 0 {
		var ok bool
		actions, ok = s.actionCache.Get(entityID)
		if !ok {
			var err error
			actions, err = s.actions.ListActions(ctx, entityID)
			if err != nil {
				return nil, fmt.Errorf("list actions: %w", err)
			}
			s.actionCache.Set(entityID, actions)
		}
	}

	now := s.now()
	out := make([]models.NormalizedObservation, 0, len(observations))
	for _, obs := range observations {
		n := models.NormalizedObservation{
			FactObservation: obs,
			NormalizedValue: obs.RawValue,
			TargetBasisDate: now,
			AppliedRatio:    1,
		}
		if metric == models.MetricSharesOutstanding {
			res, err := corpactions.Normalize(obs.RawValue, actions, obs.AsOfDate, now, corpactions.BasisCurrent, corpactions.KindShares)
			if err != nil {
				adapterErrors[obs.SourceID] = fmt.Sprintf("normalization: %v", err)
				log.WithFields(log.Fields{"entity": entityID, "source": obs.SourceID}).
					Warnf("observation dropped: %v", err)
				continue
			}
			n.NormalizedValue = res.Value
			n.AppliedRatio = res.AppliedRatio
		}
		out = append(out, n)
	}
	return out, nil
}

// applyDismissalTolerance drops deviating sources whose value is within the
// strict tolerance of the latest dismissed record inside the look-back
// window. The reviewer already adjudicated that exact value; re-raising it
// every pass is how review queues get ignored.
func (s *ReconciliationService) applyDismissalTolerance(ctx context.Context, entityID string, metric models.Metric, deviating []models.NormalizedObservation) ([]models.NormalizedObservation, error) {
	since := s.now().Add(-s.policy.DismissLookback)
	dismissed, err := s.discrepancies.GetLastDismissed(ctx, entityID, metric, since)
	if err != nil {
		return nil, fmt.Errorf("load dismissed discrepancy: %w", err)
	}
	if dismissed == nil {
		return deviating, nil
	}

	kept := deviating[:0]
	for _, n := range deviating {
		prior, seen := dismissed.SourceValues[n.SourceID]
		if seen && s.policy.WithinStrictTolerance(prior.Value, n.NormalizedValue) {
			log.WithFields(log.Fields{"entity": entityID, "metric": metric, "source": n.SourceID}).
				Debug("deviation within dismissal tolerance, suppressed")
			continue
		}
		kept = append(kept, n)
	}
	return kept, nil
}

// autoApprovable decides whether the engine may write canonical itself:
// enough confident sources, all reporting the same value to within the minor
// threshold. Returns the highest-confidence observation as the value to adopt.
func (s *ReconciliationService) autoApprovable(normalized []models.NormalizedObservation) (bool, *models.NormalizedObservation) {
	var eligible []models.NormalizedObservation
	for _, n := range normalized {
		if n.Confidence >= s.policy.MinConfidence {
			eligible = append(eligible, n)
		}
	}

	required := s.policy.AutoApproveQuorum
	if required == 0 {
		required = len(normalized)
	}
	if len(eligible) == 0 || len(eligible) < required {
		return false, nil
	}

	winner := &eligible[0]
	for i := range eligible {
		n := &eligible[i]
		if s.policy.Classify(s.policy.DeviationPct(n.NormalizedValue, winner.NormalizedValue)) != SeverityNone {
			return false, nil
		}
		if n.Confidence > winner.Confidence {
			winner = n
		}
	}
	return true, winner
}

// buildDiscrepancy captures every current source value, matching ones
// included, so the reviewer sees the whole picture in one record.
func (s *ReconciliationService) buildDiscrepancy(entityID string, metric models.Metric, normalized []models.NormalizedObservation, maxDeviation float64) *models.Discrepancy {
	now := s.now()
	values := make(map[string]models.SourceValue, len(normalized))
	for _, n := range normalized {
		values[n.SourceID] = models.SourceValue{
			Value:         n.NormalizedValue,
			AsOfDate:      n.AsOfDate,
			EvidenceQuote: n.EvidenceQuote,
		}
	}
	return &models.Discrepancy{
		ID:           uuid.New(),
		EntityID:     entityID,
		Metric:       metric,
		SourceValues: values,
		DeviationPct: maxDeviation,
		Status:       models.StatusPending,
		CreatedAt:    now,
		LastSeenAt:   now,
	}
}
