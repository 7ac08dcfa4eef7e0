package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL   string
	Contact string // contact-bearing identity sent with every outbound request
	Port    string

	CacheDir        string
	FetchTTL        time.Duration
	FetchMaxRetries int

	// Optional source endpoints; an empty URL disables that adapter.
	DashboardURL  string
	AggregatorURL string

	// Reconciliation policy knobs. Percent values, e.g. 5 means 5%.
	MinorThresholdPct  float64
	MajorThresholdPct  float64
	StrictTolerancePct float64
	DismissLookback    time.Duration
	AutoApproveQuorum  int // 0 means "all sources must agree"
	MinConfidence      float64
	ReconcileWorkers   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	// A contact string is mandatory for polite fetching: third parties
	// (SEC EDGAR in particular) require an identifying User-Agent with a
	// way to reach the operator. Refusing to start beats getting banned.
	contact := os.Getenv("CONTACT")
	if contact == "" {
		return nil, fmt.Errorf("CONTACT environment variable is required (e.g. \"datwatch/1.0 (ops@example.com)\")")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cacheDir := os.Getenv("CACHE_DIR")
	if cacheDir == "" {
		cacheDir = ".cache/fetch"
	}

	quorum := 0
	if q := os.Getenv("AUTO_APPROVE_QUORUM"); q != "" && !strings.EqualFold(q, "all") {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("AUTO_APPROVE_QUORUM must be \"all\" or a positive integer, got %q", q)
		}
		quorum = n
	}

	cfg := &Config{
		PGURL:              pgURL,
		Contact:            contact,
		Port:               port,
		CacheDir:           cacheDir,
		FetchTTL:           time.Duration(envFloat("FETCH_TTL_HOURS", 168)) * time.Hour,
		FetchMaxRetries:    envInt("FETCH_MAX_ATTEMPTS", 5),
		DashboardURL:       os.Getenv("DASHBOARD_URL"),
		AggregatorURL:      os.Getenv("AGGREGATOR_URL"),
		MinorThresholdPct:  envFloat("MINOR_THRESHOLD_PCT", 0.01),
		MajorThresholdPct:  envFloat("MAJOR_THRESHOLD_PCT", 5),
		StrictTolerancePct: envFloat("STRICT_TOLERANCE_PCT", 0.1),
		DismissLookback:    time.Duration(envInt("DISMISS_LOOKBACK_DAYS", 30)) * 24 * time.Hour,
		AutoApproveQuorum:  quorum,
		MinConfidence:      envFloat("MIN_CONFIDENCE", 0.8),
		ReconcileWorkers:   envInt("RECONCILE_WORKERS", 4),
	}

	if cfg.MinorThresholdPct >= cfg.MajorThresholdPct {
		return nil, fmt.Errorf("MINOR_THRESHOLD_PCT (%v) must be below MAJOR_THRESHOLD_PCT (%v)",
			cfg.MinorThresholdPct, cfg.MajorThresholdPct)
	}

	return cfg, nil
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
