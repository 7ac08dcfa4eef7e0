package repository

import (
	"context"
	"fmt"

	"github.com/datwatch/verifier/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActionRepository reads the corporate-action store. The store is
// append-only: corrections arrive as new superseding rows, so this layer
// only ever selects.
type ActionRepository struct {
	pool *pgxpool.Pool
}

// NewActionRepository creates a new ActionRepository
func NewActionRepository(pool *pgxpool.Pool) *ActionRepository {
	return &ActionRepository{pool: pool}
}

// ListActions returns all corporate actions for an entity, sorted ascending
// by effective date as the normalizer requires.
func (r *ActionRepository) ListActions(ctx context.Context, entityID string) ([]models.CorporateAction, error) {
	query := `
		SELECT entity_id, action_type, ratio, effective_date, source_evidence_id, confidence
		FROM corporate_actions
		WHERE entity_id = $1
		ORDER BY effective_date ASC
	`
	rows, err := r.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query corporate actions: %w", err)
	}
	defer rows.Close()

	var actions []models.CorporateAction
	for rows.Next() {
		var a models.CorporateAction
		if err := rows.Scan(&a.EntityID, &a.ActionType, &a.Ratio, &a.EffectiveDate, &a.SourceEvidenceID, &a.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan corporate action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
