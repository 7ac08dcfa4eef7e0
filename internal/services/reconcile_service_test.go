package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/datwatch/verifier/internal/models"
)

type fakeAdapter struct {
	name string
	obs  *models.FactObservation
	err  error
}

func (a *fakeAdapter) Name() string                      { return a.name }
func (a *fakeAdapter) Supports(models.Metric) bool       { return true }
func (a *fakeAdapter) Fetch(ctx context.Context, entityID string, metric models.Metric) (*models.FactObservation, error) {
	if a.err != nil {
		return nil, a.err
	}
	if a.obs == nil {
		return nil, nil
	}
	obs := *a.obs
	obs.EntityID = entityID
	obs.Metric = metric
	return &obs, nil
}

type storeKey struct {
	entity string
	metric models.Metric
}

// fakeStore implements every store interface the services need, in memory.
type fakeStore struct {
	mu        sync.Mutex
	actions   map[string][]models.CorporateAction
	canonical map[storeKey]*models.CanonicalFact
	pending   map[storeKey]*models.Discrepancy
	dismissed map[storeKey]*models.Discrepancy
	byID      map[uuid.UUID]*models.Discrepancy

	canonicalPuts int
	upserts       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		actions:   map[string][]models.CorporateAction{},
		canonical: map[storeKey]*models.CanonicalFact{},
		pending:   map[storeKey]*models.Discrepancy{},
		dismissed: map[storeKey]*models.Discrepancy{},
		byID:      map[uuid.UUID]*models.Discrepancy{},
	}
}

func (f *fakeStore) ListActions(_ context.Context, entityID string) ([]models.CorporateAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actions[entityID], nil
}

func (f *fakeStore) Get(_ context.Context, entityID string, metric models.Metric) (*models.CanonicalFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canonical[storeKey{entityID, metric}], nil
}

func (f *fakeStore) Put(_ context.Context, fact *models.CanonicalFact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canonicalPuts++
	f.canonical[storeKey{fact.EntityID, fact.Metric}] = fact
	return nil
}

func (f *fakeStore) GetOpen(_ context.Context, entityID string, metric models.Metric) (*models.Discrepancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[storeKey{entityID, metric}], nil
}

func (f *fakeStore) GetLastDismissed(_ context.Context, entityID string, metric models.Metric, since time.Time) (*models.Discrepancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.dismissed[storeKey{entityID, metric}]
	if d == nil || d.LastSeenAt.Before(since) {
		return nil, nil
	}
	return d, nil
}

func (f *fakeStore) Upsert(_ context.Context, d *models.Discrepancy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	key := storeKey{d.EntityID, d.Metric}
	if existing, ok := f.pending[key]; ok {
		existing.SourceValues = d.SourceValues
		existing.DeviationPct = d.DeviationPct
		existing.LastSeenAt = d.LastSeenAt
		d.ID = existing.ID
		d.CreatedAt = existing.CreatedAt
		return nil
	}
	cp := *d
	f.pending[key] = &cp
	f.byID[cp.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Discrepancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.DiscrepancyStatus) (*models.Discrepancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.byID[id]
	if !ok || d.Status != models.StatusPending {
		return nil, nil
	}
	d.Status = status
	delete(f.pending, storeKey{d.EntityID, d.Metric})
	if status == models.StatusDismissed {
		f.dismissed[storeKey{d.EntityID, d.Metric}] = d
	}
	return d, nil
}

func shareObs(source string, value float64, confidence float64, asOf time.Time) *models.FactObservation {
	return &models.FactObservation{
		RawValue:      value,
		AsOfDate:      asOf,
		SourceID:      source,
		EvidenceQuote: "shares outstanding",
		Confidence:    confidence,
	}
}

func newService(store *fakeStore, policy Policy, adapters ...*fakeAdapter) *ReconciliationService {
	svc := NewReconciliationService(nil, store, store, store, policy)
	for _, a := range adapters {
		svc.adapters = append(svc.adapters, a)
	}
	return svc
}

func TestReconcileCreatesSinglePendingWithBothSources(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.CanonicalFact{
		EntityID: "MSTR", Metric: models.MetricSharesOutstanding, Value: 650000000,
	}

	svc := newService(store, DefaultPolicy(),
		&fakeAdapter{name: "sec_edgar", obs: shareObs("sec_edgar", 770976730, 0.95, asOf)},
		&fakeAdapter{name: "aggregator", obs: shareObs("aggregator", 770500000, 0.8, asOf)},
	)
	svc.now = func() time.Time { return now }

	res, err := svc.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, OutcomePending, res.Outcome)
	assert.Equal(t, 2, res.Observations)
	assert.InDelta(t, 18.61, res.MaxDeviation, 0.01)

	assert.Len(t, store.pending, 1)
	d := store.pending[storeKey{"MSTR", models.MetricSharesOutstanding}]
	assert.Equal(t, models.StatusPending, d.Status)
	assert.Len(t, d.SourceValues, 2)
	assert.Equal(t, 770976730.0, d.SourceValues["sec_edgar"].Value)
	assert.Equal(t, 770500000.0, d.SourceValues["aggregator"].Value)

	// Sources disagree by 0.06%, above the minor threshold, so the engine
	// must not write canonical itself.
	assert.Equal(t, 0, store.canonicalPuts)
}

func TestReconcileSecondPassUpdatesExistingPending(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.CanonicalFact{
		EntityID: "MSTR", Metric: models.MetricSharesOutstanding, Value: 650000000,
	}

	svc := newService(store, DefaultPolicy(),
		&fakeAdapter{name: "sec_edgar", obs: shareObs("sec_edgar", 770976730, 0.95, asOf)},
		&fakeAdapter{name: "aggregator", obs: shareObs("aggregator", 770500000, 0.8, asOf)},
	)

	first, err := svc.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	second, err := svc.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)

	assert.Len(t, store.pending, 1)
	assert.Equal(t, 2, store.upserts)
	assert.Equal(t, first.DiscrepancyID, second.DiscrepancyID)
}

func TestReconcileAutoApprovesUnanimousSources(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.CanonicalFact{
		EntityID: "MSTR", Metric: models.MetricSharesOutstanding, Value: 650000000,
	}

	policy := DefaultPolicy()
	policy.MinConfidence = 0.8
	svc := newService(store, policy,
		&fakeAdapter{name: "sec_edgar", obs: shareObs("sec_edgar", 770976730, 0.95, asOf)},
		&fakeAdapter{name: "aggregator", obs: shareObs("aggregator", 770976730, 0.8, asOf)},
	)

	res, err := svc.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeAutoApproved, res.Outcome)
	assert.Equal(t, 1, store.canonicalPuts)
	assert.Equal(t, 0, store.upserts)

	canon := store.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}]
	assert.Equal(t, 770976730.0, canon.Value)
	// Highest-confidence source wins attribution.
	assert.Equal(t, "sec_edgar", canon.SourceID)
}

func TestReconcileQuorumGovernsAutoApproval(t *testing.T) {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	makeStore := func() *fakeStore {
		s := newFakeStore()
		s.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.CanonicalFact{
			EntityID: "MSTR", Metric: models.MetricSharesOutstanding, Value: 650000000,
		}
		return s
	}
	adapters := func() []*fakeAdapter {
		return []*fakeAdapter{
			{name: "sec_edgar", obs: shareObs("sec_edgar", 770976730, 0.95, asOf)},
			{name: "dashboard", obs: shareObs("dashboard", 700000000, 0.3, asOf)},
		}
	}

	// Quorum "all": the low-confidence dissenter blocks auto-approval.
	storeAll := makeStore()
	allPolicy := DefaultPolicy()
	allPolicy.AutoApproveQuorum = 0
	svcAll := newService(storeAll, allPolicy, adapters()...)
	res, err := svcAll.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, OutcomePending, res.Outcome)
	assert.Equal(t, 0, storeAll.canonicalPuts)

	// Quorum 1: the single confident source is enough.
	storeOne := makeStore()
	onePolicy := DefaultPolicy()
	onePolicy.AutoApproveQuorum = 1
	onePolicy.MinConfidence = 0.8
	svcOne := newService(storeOne, onePolicy, adapters()...)
	res, err = svcOne.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeAutoApproved, res.Outcome)
	assert.Equal(t, 770976730.0, storeOne.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}].Value)
}

func TestReconcileDismissalToleranceSuppressesAndReRaises(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	dismissedValue := 770976730.0

	makeStore := func() *fakeStore {
		s := newFakeStore()
		s.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.CanonicalFact{
			EntityID: "MSTR", Metric: models.MetricSharesOutstanding, Value: 650000000,
		}
		s.dismissed[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.Discrepancy{
			ID: uuid.New(), EntityID: "MSTR", Metric: models.MetricSharesOutstanding,
			Status:     models.StatusDismissed,
			LastSeenAt: now.Add(-10 * 24 * time.Hour),
			SourceValues: map[string]models.SourceValue{
				"sec_edgar": {Value: dismissedValue, AsOfDate: asOf},
			},
		}
		return s
	}

	// Within 0.1% of the dismissed value: suppressed, no new pending.
	within := dismissedValue * 1.0005
	storeA := makeStore()
	svcA := newService(storeA, DefaultPolicy(),
		&fakeAdapter{name: "sec_edgar", obs: shareObs("sec_edgar", within, 0.95, asOf)})
	svcA.now = func() time.Time { return now }
	res, err := svcA.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeSuppressed, res.Outcome)
	assert.Equal(t, 0, storeA.upserts)

	// The fact moved beyond 0.1%: a fresh pending record opens.
	beyond := dismissedValue * 1.002
	storeB := makeStore()
	svcB := newService(storeB, DefaultPolicy(),
		&fakeAdapter{name: "sec_edgar", obs: shareObs("sec_edgar", beyond, 0.95, asOf)})
	svcB.now = func() time.Time { return now }
	res, err = svcB.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, OutcomePending, res.Outcome)
	assert.Equal(t, 1, storeB.upserts)
}

func TestReconcileDismissalMemoryExpiresWithLookback(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.CanonicalFact{
		EntityID: "MSTR", Metric: models.MetricSharesOutstanding, Value: 650000000,
	}
	store.dismissed[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.Discrepancy{
		ID: uuid.New(), EntityID: "MSTR", Metric: models.MetricSharesOutstanding,
		Status:     models.StatusDismissed,
		LastSeenAt: now.Add(-45 * 24 * time.Hour),
		SourceValues: map[string]models.SourceValue{
			"sec_edgar": {Value: 770976730, AsOfDate: asOf},
		},
	}

	svc := newService(store, DefaultPolicy(),
		&fakeAdapter{name: "sec_edgar", obs: shareObs("sec_edgar", 770976730, 0.95, asOf)})
	svc.now = func() time.Time { return now }

	res, err := svc.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.upserts, "stale dismissal must not suppress")
	assert.Equal(t, OutcomePending, res.Outcome)
}

func TestReconcileNormalizesPreSplitObservations(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.actions["E"] = []models.CorporateAction{{
		EntityID: "E", ActionType: models.ActionReverseSplit, Ratio: 0.05,
		EffectiveDate: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
	}}
	store.canonical[storeKey{"E", models.MetricSharesOutstanding}] = &models.CanonicalFact{
		EntityID: "E", Metric: models.MetricSharesOutstanding, Value: 100000,
	}

	preSplit := shareObs("sec_edgar", 2000000, 0.95, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := newService(store, DefaultPolicy(), &fakeAdapter{name: "sec_edgar", obs: preSplit})
	svc.now = func() time.Time { return now }

	res, err := svc.ReconcileUnit(context.Background(), "E", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeMatch, res.Outcome)
	assert.Equal(t, 0, store.upserts)
}

func TestReconcileNoSignalRecordsAdapterErrors(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, DefaultPolicy(),
		&fakeAdapter{name: "sec_edgar", err: errors.New("503 after retries")},
		&fakeAdapter{name: "dashboard"},
	)

	res, err := svc.ReconcileUnit(context.Background(), "MSTR", models.MetricCashReserves)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeNoSignal, res.Outcome)
	assert.Equal(t, 0, res.Observations)
	assert.Contains(t, res.AdapterErrors["sec_edgar"], "503")
	assert.Equal(t, 0, store.upserts)
	assert.Equal(t, 0, store.canonicalPuts)
}

func TestReconcileFutureAsOfDropsObservationNotUnit(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.canonical[storeKey{"MSTR", models.MetricSharesOutstanding}] = &models.CanonicalFact{
		EntityID: "MSTR", Metric: models.MetricSharesOutstanding, Value: 770976730,
	}

	svc := newService(store, DefaultPolicy(),
		&fakeAdapter{name: "sec_edgar", obs: shareObs("sec_edgar", 770976730, 0.95, now.Add(-time.Hour))},
		&fakeAdapter{name: "aggregator", obs: shareObs("aggregator", 770976730, 0.8, now.Add(48*time.Hour))},
	)
	svc.now = func() time.Time { return now }

	res, err := svc.ReconcileUnit(context.Background(), "MSTR", models.MetricSharesOutstanding)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeMatch, res.Outcome)
	assert.Equal(t, 1, res.Observations)
	assert.Contains(t, res.AdapterErrors["aggregator"], "normalization")
}

func TestReconcileCancelledRunCommitsNothing(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, DefaultPolicy(),
		&fakeAdapter{name: "sec_edgar", obs: shareObs("sec_edgar", 770976730, 0.95, time.Now().Add(-time.Hour))})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ReconcileUnit(ctx, "MSTR", models.MetricSharesOutstanding)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.upserts)
	assert.Equal(t, 0, store.canonicalPuts)
}

func TestReconcileRejectsUnknownMetric(t *testing.T) {
	svc := newService(newFakeStore(), DefaultPolicy())
	_, err := svc.ReconcileUnit(context.Background(), "MSTR", models.Metric("pe_ratio"))
	assert.Error(t, err)
}
