package journals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/dbx"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

const columns = `id, user_id, date, content, prompt_used, entry_type, created_at, updated_at`

// PostgresRepository implements journal storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByUser returns every entry owned by userID, newest date first and
// ties broken by creation time. An empty result is a non-nil slice.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.JournalEntry, error) {
	query := `SELECT ` + columns + ` FROM journal_entries
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.JournalEntry, 0)
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Find loads an entry by id regardless of owner; callers compare the owner.
// Returns common.ErrorNotFound when no row exists.
func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.JournalEntry, error) {
	query := `SELECT ` + columns + ` FROM journal_entries WHERE id = $1`

	return oneOrNotFound(scan(r.db.QueryRowContext(ctx, query, id)))
}

// Create inserts entry and returns the stored row with its timestamps.
// A missing owner row yields common.ErrorUnauthorized.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error) {
	query := `
		INSERT INTO journal_entries (id, user_id, date, content, prompt_used, entry_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + columns

	e, err := scan(r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.Date, entry.Content, entry.PromptUsed, entry.EntryType))
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: owner no longer exists", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Update applies the non-nil fields of patch to the entry owned by userID
// and bumps updated_at. Returns common.ErrorNotFound if no such row exists.
func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.JournalPatch) (*models.JournalEntry, error) {
	query := `
		UPDATE journal_entries SET
			content = COALESCE($3, content),
			prompt_used = COALESCE($4, prompt_used),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + columns

	return oneOrNotFound(scan(r.db.QueryRowContext(ctx, query, id, userID, patch.Content, patch.PromptUsed)))
}

// Delete removes the entry owned by userID, or returns common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scan(row dbx.Scanner) (*models.JournalEntry, error) {
	e := &models.JournalEntry{}
	if err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Content, &e.PromptUsed, &e.EntryType, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func oneOrNotFound(e *models.JournalEntry, err error) (*models.JournalEntry, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}
