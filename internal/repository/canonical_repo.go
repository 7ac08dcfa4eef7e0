package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/datwatch/verifier/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CanonicalRepository handles the canonical fact store: the single trusted
// value per (entity, metric) that the rest of the product displays.
type CanonicalRepository struct {
	pool *pgxpool.Pool
}

// NewCanonicalRepository creates a new CanonicalRepository
func NewCanonicalRepository(pool *pgxpool.Pool) *CanonicalRepository {
	return &CanonicalRepository{pool: pool}
}

// Get returns the canonical fact, or nil if none exists yet (first run).
func (r *CanonicalRepository) Get(ctx context.Context, entityID string, metric models.Metric) (*models.CanonicalFact, error) {
	query := `
		SELECT entity_id, metric, value, as_of_date, source_id, confidence, updated_at
		FROM canonical_facts
		WHERE entity_id = $1 AND metric = $2
	`
	f := &models.CanonicalFact{}
	err := r.pool.QueryRow(ctx, query, entityID, metric).Scan(
		&f.EntityID, &f.Metric, &f.Value, &f.AsOfDate, &f.SourceID, &f.Confidence, &f.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get canonical fact: %w", err)
	}
	return f, nil
}

// Put inserts or replaces the canonical fact for (entity, metric).
func (r *CanonicalRepository) Put(ctx context.Context, f *models.CanonicalFact) error {
	query := `
		INSERT INTO canonical_facts (entity_id, metric, value, as_of_date, source_id, confidence, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (entity_id, metric) DO UPDATE
		SET value = EXCLUDED.value, as_of_date = EXCLUDED.as_of_date,
		    source_id = EXCLUDED.source_id, confidence = EXCLUDED.confidence,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		f.EntityID, f.Metric, f.Value, f.AsOfDate, f.SourceID, f.Confidence, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put canonical fact: %w", err)
	}
	return nil
}
