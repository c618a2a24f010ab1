// Package templates records which legal templates a user has downloaded.
package templates

import (
	"context"

	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

// Repository persists template downloads. Rows are append-only.
type Repository interface {
	Create(ctx context.Context, use *models.TemplateUse) (*models.TemplateUse, error)
	ListByUser(ctx context.Context, userID string) ([]*models.TemplateUse, error)
}
