// Package journals persists dated journal entries.
package journals

import (
	"context"

	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

// Repository persists journal entries.
type Repository interface {
	// ListByUser returns the user's entries, newest date first.
	ListByUser(ctx context.Context, userID string) ([]*models.JournalEntry, error)
	// Find loads an entry by id regardless of owner; callers compare UserID.
	Find(ctx context.Context, id string) (*models.JournalEntry, error)
	Create(ctx context.Context, entry *models.JournalEntry) (*models.JournalEntry, error)
	// Update merges patch and stamps updated_at. The row must belong to userID.
	Update(ctx context.Context, userID, id string, patch models.JournalPatch) (*models.JournalEntry, error)
	Delete(ctx context.Context, userID, id string) error
}
