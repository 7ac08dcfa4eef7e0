package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"github.com/datwatch/verifier/internal/fetchclient"
	"github.com/datwatch/verifier/internal/gate"
	"github.com/datwatch/verifier/internal/models"
)

// DashboardAdapter scrapes the community treasury dashboard. The site marks
// figures with data-metric attributes, which keeps the scrape from depending
// on layout, but the values are community-maintained so this is the lowest
// trust tier.
type DashboardAdapter struct {
	client  *fetchclient.Client
	baseURL string
}

// dashboard metric attribute values, which do not all match ours.
var dashboardMetricAttr = map[models.Metric]string{
	models.MetricCryptoHoldings:    "holdings",
	models.MetricSharesOutstanding: "shares-outstanding",
	models.MetricTotalDebt:         "debt",
	models.MetricCashReserves:      "cash",
}

// NewDashboardAdapter creates the dashboard scraper. baseURL has no default;
// the dashboard host is deployment configuration.
func NewDashboardAdapter(client *fetchclient.Client, baseURL string) *DashboardAdapter {
	return &DashboardAdapter{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (a *DashboardAdapter) Name() string { return "dashboard" }

func (a *DashboardAdapter) Supports(metric models.Metric) bool {
	_, ok := dashboardMetricAttr[metric]
	return ok
}

func (a *DashboardAdapter) Fetch(ctx context.Context, entityID string, metric models.Metric) (*models.FactObservation, error) {
	attr, ok := dashboardMetricAttr[metric]
	if !ok {
		return nil, nil
	}

	url := fmt.Sprintf("%s/companies/%s", a.baseURL, strings.ToLower(entityID))
	res, err := a.client.Fetch(ctx, url, fetchclient.Options{})
	if err != nil {
		return nil, fmt.Errorf("dashboard fetch: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("dashboard parse: %w", err)
	}

	sel := doc.Find(fmt.Sprintf(`[data-metric=%q]`, attr)).First()
	if sel.Length() == 0 {
		return nil, nil
	}

	text := strings.TrimSpace(sel.Text())
	value, err := ParseNumber(text)
	if err != nil {
		log.WithFields(log.Fields{"ticker": entityID, "metric": metric}).
			Warnf("dashboard figure unparseable: %v", err)
		return nil, nil
	}

	asOf := res.Meta.FetchedAt
	if raw, exists := sel.Attr("data-as-of"); exists {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			asOf = d
		}
	}

	// The cell text plus its label is the evidence the gate screens.
	quote := strings.TrimSpace(sel.AttrOr("data-label", "") + " " + text)
	verdict := gate.Accept(gate.Candidate{Value: value, EvidenceQuote: quote, SourceKind: metric})
	if !verdict.OK {
		log.WithFields(log.Fields{"ticker": entityID, "metric": metric, "source": a.Name()}).
			Infof("extraction rejected: %s", verdict.Reason)
		return nil, nil
	}

	return &models.FactObservation{
		EntityID:      entityID,
		Metric:        metric,
		RawValue:      value,
		AsOfDate:      asOf,
		SourceID:      a.Name(),
		FetchedAt:     res.Meta.FetchedAt,
		EvidenceQuote: quote,
		Confidence:    0.6,
	}, nil
}
