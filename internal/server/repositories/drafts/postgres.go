package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/dbx"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

const columns = `id, user_id, original_text, rewritten_text, risk_highlights, accepted_disclaimer, exported, created_at`

// PostgresRepository implements AI draft storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns the drafts owned by userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.AiDraft, error) {
	query := `SELECT ` + columns + ` FROM ai_drafts
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AiDraft, 0)
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Find loads a draft by id regardless of owner, or returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.AiDraft, error) {
	query := `SELECT ` + columns + ` FROM ai_drafts WHERE id = $1`

	d, err := scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// Create inserts draft. The exported flag always starts false.
// A missing owner row yields common.ErrorUnauthorized.
func (r *PostgresRepository) Create(ctx context.Context, draft *models.AiDraft) (*models.AiDraft, error) {
	query := `
		INSERT INTO ai_drafts (id, user_id, original_text, rewritten_text, risk_highlights, accepted_disclaimer)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + columns

	d, err := scan(r.db.QueryRowContext(ctx, query,
		draft.ID, draft.UserID, draft.OriginalText, draft.RewrittenText, draft.RiskHighlights, draft.AcceptedDisclaimer))
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: owner no longer exists", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// UpdateFlags changes only the disclaimer and exported flags of the draft
// owned by userID; the texts are never written. Returns common.ErrorNotFound
// if no such row exists.
func (r *PostgresRepository) UpdateFlags(ctx context.Context, userID, id string, patch models.DraftFlagsPatch) (*models.AiDraft, error) {
	query := `
		UPDATE ai_drafts SET
			accepted_disclaimer = COALESCE($3, accepted_disclaimer),
			exported = COALESCE($4, exported)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + columns

	d, err := scan(r.db.QueryRowContext(ctx, query, id, userID, patch.AcceptedDisclaimer, patch.Exported))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func scan(row dbx.Scanner) (*models.AiDraft, error) {
	d := &models.AiDraft{}
	err := row.Scan(&d.ID, &d.UserID, &d.OriginalText, &d.RewrittenText, &d.RiskHighlights,
		&d.AcceptedDisclaimer, &d.Exported, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}
