package models

import (
	"time"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NormalizeRequest represents the query parameters for ad hoc normalization
type NormalizeRequest struct {
	Ticker string  `form:"ticker" binding:"required"`
	Value  float64 `form:"value" binding:"required"`
	AsOf   string  `form:"as_of" binding:"required"`
	Basis  string  `form:"basis"`
	Kind   string  `form:"kind" binding:"required"`
}

// NormalizeResponse represents the result of an ad hoc normalization
type NormalizeResponse struct {
	Ticker         string  `json:"ticker"`
	Input          float64 `json:"input"`
	Normalized     float64 `json:"normalized"`
	AppliedRatio   float64 `json:"applied_ratio"`
	ActionsApplied int     `json:"actions_applied"`
	Basis          string  `json:"basis"`
	Kind           string  `json:"kind"`
}

// ReconcileRequest represents the request body for triggering reconciliation
type ReconcileRequest struct {
	Tickers []string `json:"tickers"`
	Metrics []Metric `json:"metrics"`
}

// ReconcileUnitResult summarizes one (entity, metric) reconciliation pass
type ReconcileUnitResult struct {
	EntityID      string            `json:"entity_id"`
	Metric        Metric            `json:"metric"`
	Outcome       string            `json:"outcome"`
	Observations  int               `json:"observations"`
	MaxDeviation  float64           `json:"max_deviation_pct"`
	DiscrepancyID string            `json:"discrepancy_id,omitempty"`
	AdapterErrors map[string]string `json:"adapter_errors,omitempty"`
}

// ReconcileResponse represents the response for a reconciliation run
type ReconcileResponse struct {
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Units      []ReconcileUnitResult `json:"units"`
}

// DiscrepancyListResponse wraps a list of discrepancies
type DiscrepancyListResponse struct {
	Count         int           `json:"count"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// ReviewRequest represents the body of an approve action
type ReviewRequest struct {
	SourceID string `json:"source_id"`
}

// ReviewResponse represents the outcome of a review transition
type ReviewResponse struct {
	ID       string            `json:"id"`
	Status   DiscrepancyStatus `json:"status"`
	Reviewer string            `json:"reviewer,omitempty"`
}
