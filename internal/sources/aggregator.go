package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/datwatch/verifier/internal/fetchclient"
	"github.com/datwatch/verifier/internal/gate"
	"github.com/datwatch/verifier/internal/models"
)

// AggregatorAdapter reads the commercial data aggregator's JSON API. Values
// are machine-collected from filings and feeds; middle trust tier.
type AggregatorAdapter struct {
	client  *fetchclient.Client
	baseURL string
}

// NewAggregatorAdapter creates the aggregator API adapter.
func NewAggregatorAdapter(client *fetchclient.Client, baseURL string) *AggregatorAdapter {
	return &AggregatorAdapter{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (a *AggregatorAdapter) Name() string { return "aggregator" }

func (a *AggregatorAdapter) Supports(metric models.Metric) bool {
	return models.ValidMetric(metric)
}

// aggregatorPayload is the /v1/companies/{symbol} response shape.
type aggregatorPayload struct {
	Symbol  string `json:"symbol"`
	Metrics map[string]struct {
		Value float64            `json:"value"`
		AsOf  models.FlexibleDate `json:"as_of"`
		Quote string             `json:"quote"`
	} `json:"metrics"`
}

func (a *AggregatorAdapter) Fetch(ctx context.Context, entityID string, metric models.Metric) (*models.FactObservation, error) {
	url := fmt.Sprintf("%s/v1/companies/%s", a.baseURL, strings.ToUpper(entityID))
	res, err := a.client.Fetch(ctx, url, fetchclient.Options{})
	if err != nil {
		return nil, fmt.Errorf("aggregator fetch: %w", err)
	}

	var payload aggregatorPayload
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return nil, fmt.Errorf("aggregator decode: %w", err)
	}

	entry, ok := payload.Metrics[string(metric)]
	if !ok {
		return nil, nil
	}

	verdict := gate.Accept(gate.Candidate{Value: entry.Value, EvidenceQuote: entry.Quote, SourceKind: metric})
	if !verdict.OK {
		log.WithFields(log.Fields{"ticker": entityID, "metric": metric, "source": a.Name()}).
			Infof("extraction rejected: %s", verdict.Reason)
		return nil, nil
	}

	asOf := entry.AsOf.Time
	if asOf.IsZero() {
		asOf = res.Meta.FetchedAt
	}

	return &models.FactObservation{
		EntityID:      strings.ToUpper(entityID),
		Metric:        metric,
		RawValue:      entry.Value,
		AsOfDate:      asOf,
		SourceID:      a.Name(),
		FetchedAt:     res.Meta.FetchedAt,
		EvidenceQuote: entry.Quote,
		Confidence:    0.8,
	}, nil
}
