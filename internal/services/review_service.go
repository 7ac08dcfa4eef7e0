package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/datwatch/verifier/internal/models"
)

var (
	ErrNotFound      = errors.New("discrepancy not found")
	ErrNotPending    = errors.New("discrepancy is not pending")
	ErrUnknownSource = errors.New("source not present in discrepancy")
	// ErrAmbiguousSource is returned when an approval names no source and
	// the record holds more than one.
	ErrAmbiguousSource = errors.New("discrepancy has multiple source values, source_id is required")
)

// ReviewStore is the reviewer-facing slice of the discrepancy store.
type ReviewStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Discrepancy, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DiscrepancyStatus) (*models.Discrepancy, error)
}

// ReviewService applies external reviewer decisions to pending discrepancies.
// Approvals are the human path to mutating canonical; reject and dismiss
// leave canonical untouched, differing only in tolerance memory.
type ReviewService struct {
	discrepancies ReviewStore
	canonical     CanonicalStore
	now           func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(discrepancies ReviewStore, canonical CanonicalStore) *ReviewService {
	return &ReviewService{discrepancies: discrepancies, canonical: canonical, now: time.Now}
}

// Approve adopts one of the discrepancy's source values as the new canonical
// fact, then closes the record. sourceID may be empty only when the record
// holds exactly one source value.
func (s *ReviewService) Approve(ctx context.Context, id uuid.UUID, sourceID string, reviewer string) (*models.Discrepancy, error) {
	d, err := s.getPending(ctx, id)
	if err != nil {
		return nil, err
	}

	if sourceID == "" {
		if len(d.SourceValues) != 1 {
			return nil, ErrAmbiguousSource
		}
		for k := range d.SourceValues {
			sourceID = k
		}
	}
	sv, ok := d.SourceValues[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceID)
	}

	fact := &models.CanonicalFact{
		EntityID: d.EntityID,
		Metric:   d.Metric,
		Value:    sv.Value,
		AsOfDate: sv.AsOfDate,
		SourceID: sourceID,
		// Reviewer-vetted values carry full confidence.
		Confidence: 1,
		UpdatedAt:  s.now(),
	}
	if err := s.canonical.Put(ctx, fact); err != nil {
		return nil, fmt.Errorf("write canonical: %w", err)
	}

	updated, err := s.transition(ctx, id, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"id": id, "entity": d.EntityID, "metric": d.Metric,
		"source": sourceID, "reviewer": reviewer}).Info("discrepancy approved")
	return updated, nil
}

// Reject closes the record with no canonical change and no tolerance memory;
// the same deviation will alert again on the next pass.
func (s *ReviewService) Reject(ctx context.Context, id uuid.UUID, reviewer string) (*models.Discrepancy, error) {
	if _, err := s.getPending(ctx, id); err != nil {
		return nil, err
	}
	updated, err := s.transition(ctx, id, models.StatusRejected)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"id": id, "reviewer": reviewer}).Info("discrepancy rejected")
	return updated, nil
}

// Dismiss closes the record and retains it as tolerance memory: the engine
// will not re-raise these values while they stay within the strict tolerance.
func (s *ReviewService) Dismiss(ctx context.Context, id uuid.UUID, reviewer string) (*models.Discrepancy, error) {
	if _, err := s.getPending(ctx, id); err != nil {
		return nil, err
	}
	updated, err := s.transition(ctx, id, models.StatusDismissed)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"id": id, "reviewer": reviewer}).Info("discrepancy dismissed")
	return updated, nil
}

func (s *ReviewService) getPending(ctx context.Context, id uuid.UUID) (*models.Discrepancy, error) {
	d, err := s.discrepancies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load discrepancy: %w", err)
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if d.Status != models.StatusPending {
		return nil, ErrNotPending
	}
	return d, nil
}

func (s *ReviewService) transition(ctx context.Context, id uuid.UUID, status models.DiscrepancyStatus) (*models.Discrepancy, error) {
	updated, err := s.discrepancies.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if updated == nil {
		// Lost a race with another reviewer between read and write.
		return nil, ErrNotPending
	}
	return updated, nil
}
