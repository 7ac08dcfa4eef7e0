package sources

import (
	"fmt"
	"strings"
)

// Entity is one tracked company and its per-source identifiers.
type Entity struct {
	Ticker string
	Name   string
	// CIK is the SEC Central Index Key, unpadded.
	CIK int
	// DashboardSlug is the path segment on the community dashboard.
	DashboardSlug string
	// AggregatorSymbol is the symbol the data aggregator API uses; empty
	// means same as Ticker.
	AggregatorSymbol string
}

// Registry maps tickers to per-source identifiers. Adapters must not guess
// identifiers; an entity absent from the registry is simply not covered by
// that source.
type Registry struct {
	byTicker map[string]Entity
}

// NewRegistry builds a registry from a fixed entity list.
func NewRegistry(entities []Entity) *Registry {
	r := &Registry{byTicker: make(map[string]Entity, len(entities))}
	for _, e := range entities {
		r.byTicker[strings.ToUpper(e.Ticker)] = e
	}
	return r
}

// Lookup returns the entity for a ticker, case-insensitively.
func (r *Registry) Lookup(ticker string) (Entity, bool) {
	e, ok := r.byTicker[strings.ToUpper(ticker)]
	return e, ok
}

// Tickers returns all registered tickers.
func (r *Registry) Tickers() []string {
	out := make([]string, 0, len(r.byTicker))
	for t := range r.byTicker {
		out = append(out, t)
	}
	return out
}

// CIK10 zero-pads a CIK to the 10 digits EDGAR URLs require.
func CIK10(cik int) string {
	return fmt.Sprintf("%010d", cik)
}

// DefaultEntities is the tracked universe of digital-asset treasury
// companies. Extend here when a new entity is onboarded.
var DefaultEntities = []Entity{
	{Ticker: "MSTR", Name: "Strategy Inc", CIK: 1050446, DashboardSlug: "microstrategy"},
	{Ticker: "MARA", Name: "MARA Holdings", CIK: 1507605, DashboardSlug: "marathon-digital"},
	{Ticker: "RIOT", Name: "Riot Platforms", CIK: 1167419, DashboardSlug: "riot-platforms"},
	{Ticker: "CLSK", Name: "CleanSpark", CIK: 827876, DashboardSlug: "cleanspark"},
	{Ticker: "SMLR", Name: "Semler Scientific", CIK: 1554859, DashboardSlug: "semler-scientific"},
	{Ticker: "KULR", Name: "KULR Technology", CIK: 1662684, DashboardSlug: "kulr-technology"},
	{Ticker: "BMNR", Name: "Bitmine Immersion", CIK: 1829311, DashboardSlug: "bitmine"},
	{Ticker: "SBET", Name: "SharpLink Gaming", CIK: 1981535, DashboardSlug: "sharplink"},
	{Ticker: "DFDV", Name: "DeFi Development", CIK: 1805521, DashboardSlug: "defi-development"},
	{Ticker: "UPXI", Name: "Upexi", CIK: 1775194, DashboardSlug: "upexi"},
}
