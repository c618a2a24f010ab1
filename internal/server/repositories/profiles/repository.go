// Package profiles persists the one-per-user profile record.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

// Repository persists the single profile each user may have.
type Repository interface {
	// FindByUser returns the caller's profile or common.ErrorNotFound.
	FindByUser(ctx context.Context, userID string) (*models.Profile, error)

	// Upsert creates the profile with id when userID has none, otherwise merges
	// the non-nil fields of patch into the existing row. Either way exactly one
	// row exists for userID afterwards.
	Upsert(ctx context.Context, id, userID string, patch models.ProfilePatch) (*models.Profile, error)
}
