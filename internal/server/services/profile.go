package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/logging"
	"github.com/dmitrijs2005/dadkeeper/internal/server/events"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dadkeeper/internal/server/validation"
	"github.com/google/uuid"
)

// UpsertProfileInput is a partial profile; nil fields keep their stored value.
type UpsertProfileInput struct {
	Name                *string `json:"name" validate:"omitnil,max=200"`
	LegalSituation      *string `json:"legalSituation" validate:"omitnil,max=5000"`
	ChildDetails        *string `json:"childDetails" validate:"omitnil,max=5000"`
	EmergencyContacts   *string `json:"emergencyContacts" validate:"omitnil,max=5000"`
	UnderAvo            *bool   `json:"underAvo"`
	OnboardingCompleted *bool   `json:"onboardingCompleted"`
}

// ProfileService reads and upserts the caller's profile, keeping the cache
// in step.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       ProfileCache
	events      events.Publisher
	logger      logging.Logger
}

// NewProfileService constructs a ProfileService. cache may be a no-op.
func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, cache ProfileCache,
	pub events.Publisher, logger logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		cache:       cache,
		events:      pub,
		logger:      logger.With("module", "profile_service"),
	}
}

// Get returns the caller's profile, or nil without error when none exists yet.
func (s *ProfileService) Get(ctx context.Context, caller Caller) (*models.Profile, error) {
	cached, gen, err := s.cache.Get(ctx, caller.UserID)
	if err == nil {
		s.logger.Debug(ctx, "profile cache hit", "user_id", caller.UserID)
		return cached, nil
	}
	writeBack := errors.Is(err, common.ErrorNotFound)
	if !writeBack {
		s.logger.Warn(ctx, "profile cache read failed", "user_id", caller.UserID, "error", err)
	}

	p, err := s.repomanager.Profiles(s.db).FindByUser(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if writeBack {
		if err := s.cache.Set(ctx, p, gen); err != nil {
			s.logger.Warn(ctx, "profile cache write failed", "user_id", caller.UserID, "error", err)
		}
	}
	return p, nil
}

// Upsert creates or merges the caller's profile in a single statement, so
// concurrent first writes still leave exactly one row.
func (s *ProfileService) Upsert(ctx context.Context, caller Caller, in UpsertProfileInput) (*models.Profile, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.repomanager.Profiles(s.db).Upsert(ctx, uuid.NewString(), caller.UserID, models.ProfilePatch{
		Name:                in.Name,
		LegalSituation:      in.LegalSituation,
		ChildDetails:        in.ChildDetails,
		EmergencyContacts:   in.EmergencyContacts,
		UnderAvo:            in.UnderAvo,
		OnboardingCompleted: in.OnboardingCompleted,
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, caller.UserID); err != nil {
		s.logger.Warn(ctx, "profile cache invalidation failed", "user_id", caller.UserID, "error", err)
	}
	events.Emit(ctx, s.events, s.logger, events.NewEvent(events.ProfileUpdated, caller.UserID, p.ID))
	return p, nil
}
