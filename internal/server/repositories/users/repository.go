// Package users declares and implements persistence for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

// Repository persists user accounts.
type Repository interface {
	// Create inserts the user; a taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Delete removes the user; owned rows go with it through ON DELETE CASCADE.
	Delete(ctx context.Context, id string) error
}
