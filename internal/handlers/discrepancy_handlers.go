package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/datwatch/verifier/internal/middleware"
	"github.com/datwatch/verifier/internal/models"
	"github.com/datwatch/verifier/internal/services"
)

// DiscrepancyLister is the listing slice of the discrepancy repository.
type DiscrepancyLister interface {
	List(ctx context.Context, status models.DiscrepancyStatus, limit int) ([]models.Discrepancy, error)
}

// DiscrepancyHandler handles discrepancy listing and review endpoints
type DiscrepancyHandler struct {
	reviewSvc *services.ReviewService
	lister    DiscrepancyLister
}

// NewDiscrepancyHandler creates a new DiscrepancyHandler
func NewDiscrepancyHandler(reviewSvc *services.ReviewService, lister DiscrepancyLister) *DiscrepancyHandler {
	return &DiscrepancyHandler{
		reviewSvc: reviewSvc,
		lister:    lister,
	}
}

// List handles GET /discrepancies
// @Summary List discrepancies
// @Description List discrepancy records, newest first, optionally filtered by status
// @Tags discrepancies
// @Produce json
// @Param status query string false "Filter by status: pending, approved, rejected, dismissed"
// @Param limit query int false "Maximum records to return (default 100)"
// @Success 200 {object} models.DiscrepancyListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /discrepancies [get]
func (h *DiscrepancyHandler) List(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	status := models.DiscrepancyStatus(query.Status)
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusDismissed:
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "unknown status " + query.Status,
		})
		return
	}

	discrepancies, err := h.lister.List(c.Request.Context(), status, query.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.DiscrepancyListResponse{
		Count:         len(discrepancies),
		Discrepancies: discrepancies,
	})
}

// Approve handles POST /discrepancies/:id/approve
// @Summary Approve a pending discrepancy
// @Description Adopt one of the discrepancy's source values as the new canonical fact and close the record
// @Tags discrepancies
// @Accept json
// @Produce json
// @Param id path string true "Discrepancy ID"
// @Param request body models.ReviewRequest false "Source to adopt (required when the record holds multiple source values)"
// @Success 200 {object} models.ReviewResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /discrepancies/{id}/approve [post]
func (h *DiscrepancyHandler) Approve(c *gin.Context) {
	id, reviewer, ok := h.reviewParams(c)
	if !ok {
		return
	}

	var req models.ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
			return
		}
	}

	d, err := h.reviewSvc.Approve(c.Request.Context(), id, req.SourceID, reviewer)
	if err != nil {
		h.reviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReviewResponse{ID: d.ID.String(), Status: d.Status, Reviewer: reviewer})
}

// Reject handles POST /discrepancies/:id/reject
// @Summary Reject a pending discrepancy
// @Description Close the record with no canonical change; the same deviation will alert again on the next pass
// @Tags discrepancies
// @Produce json
// @Param id path string true "Discrepancy ID"
// @Success 200 {object} models.ReviewResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /discrepancies/{id}/reject [post]
func (h *DiscrepancyHandler) Reject(c *gin.Context) {
	id, reviewer, ok := h.reviewParams(c)
	if !ok {
		return
	}
	d, err := h.reviewSvc.Reject(c.Request.Context(), id, reviewer)
	if err != nil {
		h.reviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReviewResponse{ID: d.ID.String(), Status: d.Status, Reviewer: reviewer})
}

// Dismiss handles POST /discrepancies/:id/dismiss
// @Summary Dismiss a pending discrepancy
// @Description Close the record and retain it as tolerance memory so the engine does not re-raise materially identical values
// @Tags discrepancies
// @Produce json
// @Param id path string true "Discrepancy ID"
// @Success 200 {object} models.ReviewResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /discrepancies/{id}/dismiss [post]
func (h *DiscrepancyHandler) Dismiss(c *gin.Context) {
	id, reviewer, ok := h.reviewParams(c)
	if !ok {
		return
	}
	d, err := h.reviewSvc.Dismiss(c.Request.Context(), id, reviewer)
	if err != nil {
		h.reviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ReviewResponse{ID: d.ID.String(), Status: d.Status, Reviewer: reviewer})
}

func (h *DiscrepancyHandler) reviewParams(c *gin.Context) (uuid.UUID, string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "invalid discrepancy id",
		})
		return uuid.Nil, "", false
	}
	reviewer, _ := middleware.GetReviewer(c)
	return id, reviewer, true
}

func (h *DiscrepancyHandler) reviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "discrepancy not found",
		})
	case errors.Is(err, services.ErrNotPending):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "not_pending",
			Message: "discrepancy is not pending",
		})
	case errors.Is(err, services.ErrAmbiguousSource), errors.Is(err, services.ErrUnknownSource):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
