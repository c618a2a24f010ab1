// Package services contains the server-side business logic. Every operation
// is scoped to a Caller; records owned by someone else are reported as
// common.ErrorNotFound so their existence does not leak.
package services

import (
	"context"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/server/llm"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
)

// Caller is the authenticated identity a request acts on behalf of.
type Caller struct {
	UserID string
}

type owned interface {
	OwnerID() string
}

// loadOwned fetches a record by id and hides it unless caller owns it.
func loadOwned[T owned](ctx context.Context, find func(context.Context, string) (T, error), id string, caller Caller) (T, error) {
	var zero T
	rec, err := find(ctx, id)
	if err != nil {
		return zero, err
	}
	if rec.OwnerID() != caller.UserID {
		return zero, common.ErrorNotFound
	}
	return rec, nil
}

// ProfileCache is a best-effort read cache. Entries are tagged with a
// per-user generation: Get reports the current one (also on a miss, which is
// common.ErrorNotFound), Set stores under the generation the reader saw, and
// Invalidate moves to a new generation so a write-back that raced an update
// is never served.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.Profile, int64, error)
	Set(ctx context.Context, p *models.Profile, generation int64) error
	Invalidate(ctx context.Context, userID string) error
}

// Rewriter turns a message into a calmer version with risk notes.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (*llm.Result, error)
}

// Presigner signs a short-lived download URL for an object key.
type Presigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}
