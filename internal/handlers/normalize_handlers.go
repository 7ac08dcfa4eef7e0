package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/datwatch/verifier/internal/corpactions"
	"github.com/datwatch/verifier/internal/models"
	"github.com/datwatch/verifier/internal/services"
)

// NormalizeHandler exposes corporate-action normalization for ad hoc
// verification
type NormalizeHandler struct {
	actions services.ActionStore
}

// NewNormalizeHandler creates a new NormalizeHandler
func NewNormalizeHandler(actions services.ActionStore) *NormalizeHandler {
	return &NormalizeHandler{actions: actions}
}

// Normalize handles GET /normalize
// @Summary Normalize a value across an entity's split history
// @Description Convert a share count or price reported as of a date onto the current or historical basis, applying the entity's recorded corporate actions
// @Tags normalize
// @Produce json
// @Param ticker query string true "Entity ticker"
// @Param value query number true "Value to convert"
// @Param as_of query string true "Date the value was reported (YYYY-MM-DD)"
// @Param basis query string false "Target basis: current (default) or historical"
// @Param kind query string true "Value kind: shares or price"
// @Success 200 {object} models.NormalizeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /normalize [get]
func (h *NormalizeHandler) Normalize(c *gin.Context) {
	var req models.NormalizeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	asOf, err := time.Parse("2006-01-02", req.AsOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "as_of must be YYYY-MM-DD",
		})
		return
	}
	basis, err := corpactions.ParseBasis(req.Basis)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}
	kind, err := corpactions.ParseKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	actions, err := h.actions.ListActions(c.Request.Context(), req.Ticker)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	result, err := corpactions.Normalize(req.Value, actions, asOf, time.Now(), basis, kind)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, corpactions.ErrFutureAsOf) {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "normalization_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.NormalizeResponse{
		Ticker:         req.Ticker,
		Input:          req.Value,
		Normalized:     result.Value,
		AppliedRatio:   result.AppliedRatio,
		ActionsApplied: result.ActionsApplied,
		Basis:          string(basis),
		Kind:           string(kind),
	})
}
