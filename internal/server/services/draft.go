package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dadkeeper/internal/dbx"
	"github.com/dmitrijs2005/dadkeeper/internal/logging"
	"github.com/dmitrijs2005/dadkeeper/internal/server/events"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dadkeeper/internal/server/validation"
	"github.com/google/uuid"
)

// CreateDraftInput carries a rewrite result to keep. Both texts are required.
type CreateDraftInput struct {
	OriginalText       string  `json:"originalText" validate:"required"`
	RewrittenText      string  `json:"rewrittenText" validate:"required"`
	RiskHighlights     *string `json:"riskHighlights"`
	AcceptedDisclaimer *bool   `json:"acceptedDisclaimer"`
}

// UpdateDraftInput only carries the flags. Draft texts cannot change.
type UpdateDraftInput struct {
	AcceptedDisclaimer *bool `json:"acceptedDisclaimer"`
	Exported           *bool `json:"exported"`
}

// DraftService manages saved AI drafts. Texts are immutable after creation;
// only the disclaimer and exported flags change.
type DraftService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	events      events.Publisher
	logger      logging.Logger
}

// NewDraftService constructs a DraftService.
func NewDraftService(db *sql.DB, m repomanager.RepositoryManager, pub events.Publisher, logger logging.Logger) *DraftService {
	return &DraftService{db: db, repomanager: m, events: pub, logger: logger.With("module", "draft_service")}
}

// List returns the caller's drafts, newest first.
func (s *DraftService) List(ctx context.Context, caller Caller) ([]*models.AiDraft, error) {
	return s.repomanager.Drafts(s.db).ListByUser(ctx, caller.UserID)
}

// Get returns one draft owned by the caller.
func (s *DraftService) Get(ctx context.Context, caller Caller, id string) (*models.AiDraft, error) {
	return loadOwned(ctx, s.repomanager.Drafts(s.db).Find, id, caller)
}

// Create validates in and stores a new draft for the caller.
func (s *DraftService) Create(ctx context.Context, caller Caller, in CreateDraftInput) (*models.AiDraft, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	draft, err := s.repomanager.Drafts(s.db).Create(ctx, &models.AiDraft{
		ID:                 uuid.NewString(),
		UserID:             caller.UserID,
		OriginalText:       in.OriginalText,
		RewrittenText:      in.RewrittenText,
		RiskHighlights:     in.RiskHighlights,
		AcceptedDisclaimer: in.AcceptedDisclaimer != nil && *in.AcceptedDisclaimer,
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.events, s.logger, events.NewEvent(events.DraftCreated, caller.UserID, draft.ID))
	return draft, nil
}

// Update checks ownership and changes the flags inside one transaction.
func (s *DraftService) Update(ctx context.Context, caller Caller, id string, in UpdateDraftInput) (*models.AiDraft, error) {
	var updated *models.AiDraft
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Drafts(tx)
		if _, err := loadOwned(ctx, repo.Find, id, caller); err != nil {
			return err
		}
		var err error
		updated, err = repo.UpdateFlags(ctx, caller.UserID, id, models.DraftFlagsPatch{
			AcceptedDisclaimer: in.AcceptedDisclaimer,
			Exported:           in.Exported,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.events, s.logger, events.NewEvent(events.DraftUpdated, caller.UserID, id))
	return updated, nil
}
