package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/datwatch/verifier/internal/models"
	"github.com/datwatch/verifier/internal/services"
)

// ReconcileHandler exposes the reconciliation run trigger; the external
// scheduler is expected to be its only regular caller
type ReconcileHandler struct {
	runner *services.Runner
}

// NewReconcileHandler creates a new ReconcileHandler
func NewReconcileHandler(runner *services.Runner) *ReconcileHandler {
	return &ReconcileHandler{runner: runner}
}

// Reconcile handles POST /reconcile
// @Summary Run a reconciliation pass
// @Description Reconcile the given tickers and metrics against all configured sources. Empty tickers means the whole registry; empty metrics means every tracked metric
// @Tags reconcile
// @Accept json
// @Produce json
// @Param request body models.ReconcileRequest false "Run scope"
// @Success 200 {object} models.ReconcileResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /reconcile [post]
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	var req models.ReconcileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
			return
		}
	}

	resp, err := h.runner.Run(c.Request.Context(), req.Tickers, req.Metrics)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
