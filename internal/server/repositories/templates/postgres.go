package templates

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/dbx"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

// PostgresRepository implements template download history over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends a download record and fills in DownloadedAt from the database.
// A missing owner row yields common.ErrorUnauthorized.
func (r *PostgresRepository) Create(ctx context.Context, use *models.TemplateUse) (*models.TemplateUse, error) {
	query := `
		INSERT INTO templates_used (id, user_id, template_type, phase)
		VALUES ($1, $2, $3, $4)
		RETURNING downloaded_at`

	if err := r.db.QueryRowContext(ctx, query, use.ID, use.UserID, use.TemplateType, use.Phase).Scan(&use.DownloadedAt); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: owner no longer exists", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return use, nil
}

// ListByUser returns the downloads of userID, most recent first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.TemplateUse, error) {
	query := `
		SELECT id, user_id, template_type, phase, downloaded_at
		FROM templates_used
		WHERE user_id = $1
		ORDER BY downloaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.TemplateUse, 0)
	for rows.Next() {
		u := &models.TemplateUse{}
		if err := rows.Scan(&u.ID, &u.UserID, &u.TemplateType, &u.Phase, &u.DownloadedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
