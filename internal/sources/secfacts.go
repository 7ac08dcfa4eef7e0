package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/datwatch/verifier/internal/fetchclient"
	"github.com/datwatch/verifier/internal/gate"
	"github.com/datwatch/verifier/internal/models"
)

// DefaultSECBaseURL is the XBRL frames host, not www.sec.gov.
const DefaultSECBaseURL = "https://data.sec.gov"

// secTag is one XBRL concept an adapter metric can be read from. Tags are
// tried in order; the first concept present in the filing wins.
type secTag struct {
	taxonomy string
	tag      string
	// label joins the evidence quote so the gate sees a recognizable phrase
	// even for terse concept names.
	label string
}

var secTags = map[models.Metric][]secTag{
	models.MetricSharesOutstanding: {
		{"dei", "EntityCommonStockSharesOutstanding", "shares outstanding"},
	},
	models.MetricTotalDebt: {
		{"us-gaap", "LongTermDebt", "total debt"},
		{"us-gaap", "LongTermDebtNoncurrent", "total debt"},
	},
	models.MetricCashReserves: {
		{"us-gaap", "CashAndCashEquivalentsAtCarryingValue", "cash and cash equivalents"},
	},
	models.MetricPreferredEquity: {
		{"us-gaap", "PreferredStockValue", "preferred equity"},
	},
	models.MetricCryptoHoldings: {
		{"us-gaap", "CryptoAssetNumberOfUnits", "crypto holdings"},
	},
}

// SECFactsAdapter reads structured XBRL company facts from EDGAR. Highest
// trust tier: values are as-filed, machine-tagged, and carry the fiscal
// period end date.
type SECFactsAdapter struct {
	client   *fetchclient.Client
	registry *Registry
	baseURL  string
}

// NewSECFactsAdapter creates the EDGAR company-facts adapter. baseURL is
// overridable for tests; pass "" for the real host.
func NewSECFactsAdapter(client *fetchclient.Client, registry *Registry, baseURL string) *SECFactsAdapter {
	if baseURL == "" {
		baseURL = DefaultSECBaseURL
	}
	return &SECFactsAdapter{client: client, registry: registry, baseURL: baseURL}
}

func (a *SECFactsAdapter) Name() string { return "sec_edgar" }

func (a *SECFactsAdapter) Supports(metric models.Metric) bool {
	_, ok := secTags[metric]
	return ok
}

// companyFacts mirrors the slice of the companyfacts payload we consume.
type companyFacts struct {
	Facts map[string]map[string]struct {
		Units map[string][]factPoint `json:"units"`
	} `json:"facts"`
}

type factPoint struct {
	End  string  `json:"end"`
	Val  float64 `json:"val"`
	Form string  `json:"form"`
}

func (a *SECFactsAdapter) Fetch(ctx context.Context, entityID string, metric models.Metric) (*models.FactObservation, error) {
	tags, ok := secTags[metric]
	if !ok {
		return nil, nil
	}
	ent, ok := a.registry.Lookup(entityID)
	if !ok || ent.CIK == 0 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", a.baseURL, CIK10(ent.CIK))
	res, err := a.client.Fetch(ctx, url, fetchclient.Options{})
	if err != nil {
		return nil, fmt.Errorf("sec companyfacts fetch: %w", err)
	}

	var facts companyFacts
	if err := json.Unmarshal(res.Body, &facts); err != nil {
		return nil, fmt.Errorf("sec companyfacts decode: %w", err)
	}

	for _, t := range tags {
		concept, ok := facts.Facts[t.taxonomy][t.tag]
		if !ok {
			continue
		}
		point, found := latestPoint(concept.Units)
		if !found {
			continue
		}
		asOf, err := time.Parse("2006-01-02", point.End)
		if err != nil {
			log.WithFields(log.Fields{"ticker": ent.Ticker, "tag": t.tag}).
				Warnf("unparseable period end %q", point.End)
			continue
		}

		quote := fmt.Sprintf("%s:%s %s as of %s (%s)", t.taxonomy, t.tag, t.label, point.End, point.Form)
		verdict := gate.Accept(gate.Candidate{Value: point.Val, EvidenceQuote: quote, SourceKind: metric})
		if !verdict.OK {
			log.WithFields(log.Fields{"ticker": ent.Ticker, "metric": metric, "source": a.Name()}).
				Infof("extraction rejected: %s", verdict.Reason)
			continue
		}

		return &models.FactObservation{
			EntityID:      ent.Ticker,
			Metric:        metric,
			RawValue:      point.Val,
			AsOfDate:      asOf,
			SourceID:      a.Name(),
			FetchedAt:     res.Meta.FetchedAt,
			EvidenceQuote: quote,
			Confidence:    0.95,
		}, nil
	}
	return nil, nil
}

// latestPoint picks the fact with the newest period end across all units.
// Companyfacts appends every historical filing, so the tail is not
// necessarily the most recent period.
func latestPoint(units map[string][]factPoint) (factPoint, bool) {
	var best factPoint
	found := false
	for _, points := range units {
		for _, p := range points {
			if !found || p.End > best.End {
				best = p
				found = true
			}
		}
	}
	return best, found
}
