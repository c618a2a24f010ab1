// Package drafts persists saved AI rewrite drafts.
package drafts

import (
	"context"

	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

// Repository persists AI drafts. Drafts are never deleted individually.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.AiDraft, error)
	Find(ctx context.Context, id string) (*models.AiDraft, error)
	Create(ctx context.Context, draft *models.AiDraft) (*models.AiDraft, error)
	// UpdateFlags only ever touches accepted_disclaimer and exported.
	UpdateFlags(ctx context.Context, userID, id string, patch models.DraftFlagsPatch) (*models.AiDraft, error)
}
