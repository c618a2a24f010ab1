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

// CreateJournalInput is the body of a new journal entry. EntryType defaults
// to models.DefaultEntryType.
type CreateJournalInput struct {
	Date       string  `json:"date" validate:"required,max=64"`
	Content    string  `json:"content" validate:"required"`
	PromptUsed *string `json:"promptUsed"`
	EntryType  *string `json:"entryType" validate:"omitnil,max=50"`
}

// UpdateJournalInput is a partial update; nil fields keep their stored value.
type UpdateJournalInput struct {
	Content    *string `json:"content" validate:"omitnil,min=1"`
	PromptUsed *string `json:"promptUsed"`
}

// JournalService manages the caller's journal entries. Entries owned by
// someone else are reported as common.ErrorNotFound.
type JournalService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	events      events.Publisher
	logger      logging.Logger
}

// NewJournalService constructs a JournalService.
func NewJournalService(db *sql.DB, m repomanager.RepositoryManager, pub events.Publisher, logger logging.Logger) *JournalService {
	return &JournalService{db: db, repomanager: m, events: pub, logger: logger.With("module", "journal_service")}
}

// List returns the caller's entries, newest date first.
func (s *JournalService) List(ctx context.Context, caller Caller) ([]*models.JournalEntry, error) {
	return s.repomanager.Journals(s.db).ListByUser(ctx, caller.UserID)
}

// Get returns one entry owned by the caller.
func (s *JournalService) Get(ctx context.Context, caller Caller, id string) (*models.JournalEntry, error) {
	return loadOwned(ctx, s.repomanager.Journals(s.db).Find, id, caller)
}

// Create validates in and stores a new entry for the caller.
func (s *JournalService) Create(ctx context.Context, caller Caller, in CreateJournalInput) (*models.JournalEntry, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	entryType := models.DefaultEntryType
	if in.EntryType != nil && *in.EntryType != "" {
		entryType = *in.EntryType
	}

	entry, err := s.repomanager.Journals(s.db).Create(ctx, &models.JournalEntry{
		ID:         uuid.NewString(),
		UserID:     caller.UserID,
		Date:       in.Date,
		Content:    in.Content,
		PromptUsed: in.PromptUsed,
		EntryType:  entryType,
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.events, s.logger, events.NewEvent(events.JournalCreated, caller.UserID, entry.ID))
	return entry, nil
}

// Update checks ownership and applies in inside one transaction.
func (s *JournalService) Update(ctx context.Context, caller Caller, id string, in UpdateJournalInput) (*models.JournalEntry, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var updated *models.JournalEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Journals(tx)
		if _, err := loadOwned(ctx, repo.Find, id, caller); err != nil {
			return err
		}
		var err error
		updated, err = repo.Update(ctx, caller.UserID, id, models.JournalPatch{Content: in.Content, PromptUsed: in.PromptUsed})
		return err
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.events, s.logger, events.NewEvent(events.JournalUpdated, caller.UserID, id))
	return updated, nil
}

// Delete checks ownership and removes the entry inside one transaction.
func (s *JournalService) Delete(ctx context.Context, caller Caller, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Journals(tx)
		if _, err := loadOwned(ctx, repo.Find, id, caller); err != nil {
			return err
		}
		return repo.Delete(ctx, caller.UserID, id)
	})
	if err != nil {
		return err
	}

	events.Emit(ctx, s.events, s.logger, events.NewEvent(events.JournalDeleted, caller.UserID, id))
	return nil
}
