package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/dbx"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

const columns = `id, user_id, name, legal_situation, child_details, emergency_contacts, under_avo, onboarding_completed, created_at`

// PostgresRepository implements profile storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByUser returns the profile of userID, or common.ErrorNotFound.
func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + columns + ` FROM profiles WHERE user_id = $1`

	p, err := scan(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Upsert relies on the unique user_id constraint, so concurrent first writes
// for the same user still converge on one row.
func (r *PostgresRepository) Upsert(ctx context.Context, id, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, user_id, name, legal_situation, child_details, emergency_contacts, under_avo, onboarding_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, FALSE))
		ON CONFLICT (user_id) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, profiles.name),
			legal_situation = COALESCE(EXCLUDED.legal_situation, profiles.legal_situation),
			child_details = COALESCE(EXCLUDED.child_details, profiles.child_details),
			emergency_contacts = COALESCE(EXCLUDED.emergency_contacts, profiles.emergency_contacts),
			under_avo = COALESCE(EXCLUDED.under_avo, profiles.under_avo),
			onboarding_completed = COALESCE($8, profiles.onboarding_completed)
		RETURNING ` + columns

	p, err := scan(r.db.QueryRowContext(ctx, query,
		id, userID, patch.Name, patch.LegalSituation, patch.ChildDetails, patch.EmergencyContacts,
		patch.UnderAvo, patch.OnboardingCompleted))
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: owner no longer exists", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func scan(row dbx.Scanner) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.LegalSituation, &p.ChildDetails,
		&p.EmergencyContacts, &p.UnderAvo, &p.OnboardingCompleted, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
