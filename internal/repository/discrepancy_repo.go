package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/datwatch/verifier/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DiscrepancyRepository handles the discrepancy history store. Rows are
// append-only apart from the status transition and the open record's
// source-values refresh; history is what dismissal-tolerance matching
// queries, so nothing is ever deleted.
type DiscrepancyRepository struct {
	pool *pgxpool.Pool
}

// NewDiscrepancyRepository creates a new DiscrepancyRepository
func NewDiscrepancyRepository(pool *pgxpool.Pool) *DiscrepancyRepository {
	return &DiscrepancyRepository{pool: pool}
}

const discrepancyColumns = `id, entity_id, metric, source_values, deviation_pct, status, created_at, last_seen_at`

func scanDiscrepancy(row pgx.Row) (*models.Discrepancy, error) {
	d := &models.Discrepancy{}
	var sourceValues []byte
	err := row.Scan(&d.ID, &d.EntityID, &d.Metric, &sourceValues, &d.DeviationPct, &d.Status, &d.CreatedAt, &d.LastSeenAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sourceValues, &d.SourceValues); err != nil {
		return nil, fmt.Errorf("failed to decode source values: %w", err)
	}
	return d, nil
}

// GetByID returns one discrepancy, nil if absent.
func (r *DiscrepancyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Discrepancy, error) {
	query := `SELECT ` + discrepancyColumns + ` FROM discrepancies WHERE id = $1`
	d, err := scanDiscrepancy(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discrepancy: %w", err)
	}
	return d, nil
}

// GetOpen returns the single pending discrepancy for (entity, metric), or nil.
func (r *DiscrepancyRepository) GetOpen(ctx context.Context, entityID string, metric models.Metric) (*models.Discrepancy, error) {
	query := `
		SELECT ` + discrepancyColumns + `
		FROM discrepancies
		WHERE entity_id = $1 AND metric = $2 AND status = 'pending'
	`
	d, err := scanDiscrepancy(r.pool.QueryRow(ctx, query, entityID, metric))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open discrepancy: %w", err)
	}
	return d, nil
}

// GetLastDismissed returns the most recently dismissed discrepancy for
// (entity, metric) no older than since, or nil.
func (r *DiscrepancyRepository) GetLastDismissed(ctx context.Context, entityID string, metric models.Metric, since time.Time) (*models.Discrepancy, error) {
	query := `
		SELECT ` + discrepancyColumns + `
		FROM discrepancies
		WHERE entity_id = $1 AND metric = $2 AND status = 'dismissed' AND last_seen_at >= $3
		ORDER BY last_seen_at DESC
		LIMIT 1
	`
	d, err := scanDiscrepancy(r.pool.QueryRow(ctx, query, entityID, metric, since))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last dismissed discrepancy: %w", err)
	}
	return d, nil
}

// Upsert creates the pending discrepancy for (entity, metric) or refreshes
// the existing one. The partial unique index on pending rows makes "at most
// one open record" a database invariant, not just engine discipline.
func (r *DiscrepancyRepository) Upsert(ctx context.Context, d *models.Discrepancy) error {
	sourceValues, err := json.Marshal(d.SourceValues)
	if err != nil {
		return fmt.Errorf("failed to encode source values: %w", err)
	}

	query := `
		INSERT INTO discrepancies (id, entity_id, metric, source_values, deviation_pct, status, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7)
		ON CONFLICT (entity_id, metric) WHERE status = 'pending' DO UPDATE
		SET source_values = EXCLUDED.source_values,
		    deviation_pct = EXCLUDED.deviation_pct,
		    last_seen_at = EXCLUDED.last_seen_at
		RETURNING id, created_at
	`
	err = r.pool.QueryRow(ctx, query,
		d.ID, d.EntityID, d.Metric, sourceValues, d.DeviationPct, d.CreatedAt, d.LastSeenAt,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert discrepancy: %w", err)
	}
	return nil
}

// UpdateStatus transitions a discrepancy out of pending. Returns the updated
// record, or nil when the row does not exist or is no longer pending.
func (r *DiscrepancyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DiscrepancyStatus) (*models.Discrepancy, error) {
	query := `
		UPDATE discrepancies
		SET status = $2, last_seen_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + discrepancyColumns

	d, err := scanDiscrepancy(r.pool.QueryRow(ctx, query, id, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update discrepancy status: %w", err)
	}
	return d, nil
}

// List returns discrepancies filtered by status, newest first. An empty
// status returns everything.
func (r *DiscrepancyRepository) List(ctx context.Context, status models.DiscrepancyStatus, limit int) ([]models.Discrepancy, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + discrepancyColumns + `
		FROM discrepancies
		WHERE ($1 = '' OR status = $1)
		ORDER BY last_seen_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list discrepancies: %w", err)
	}
	defer rows.Close()

	var out []models.Discrepancy
	for rows.Next() {
		d, err := scanDiscrepancy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discrepancy: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
