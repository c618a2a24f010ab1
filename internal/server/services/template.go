package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/logging"
	"github.com/dmitrijs2005/dadkeeper/internal/server/events"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dadkeeper/internal/server/storage"
	"github.com/dmitrijs2005/dadkeeper/internal/server/toolkit"
	"github.com/dmitrijs2005/dadkeeper/internal/server/validation"
	"github.com/google/uuid"
)

// RecordTemplateInput names a catalog template and, optionally, the roadmap
// phase it was downloaded from.
type RecordTemplateInput struct {
	TemplateType string `json:"templateType" validate:"required"`
	Phase        *int   `json:"phase" validate:"omitnil,min=1,max=10"`
}

// TemplateDownload is the stored record plus a presigned URL when object
// storage is configured.
type TemplateDownload struct {
	Template    *models.TemplateUse `json:"template"`
	DownloadURL string              `json:"downloadUrl,omitempty"`
}

// TemplateService records template downloads and signs their links.
type TemplateService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   Presigner
	events      events.Publisher
	logger      logging.Logger
}

// NewTemplateService builds the service. presigner may be nil when no
// object storage is configured; downloads are then recorded without a URL.
func NewTemplateService(db *sql.DB, m repomanager.RepositoryManager, presigner Presigner,
	pub events.Publisher, logger logging.Logger) *TemplateService {
	return &TemplateService{
		db:          db,
		repomanager: m,
		presigner:   presigner,
		events:      pub,
		logger:      logger.With("module", "template_service"),
	}
}

// Record stores a download for the caller and returns a link to the file.
// Unknown template types are a validation error.
func (s *TemplateService) Record(ctx context.Context, caller Caller, in RecordTemplateInput) (*TemplateDownload, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, ok := toolkit.FindTemplate(in.TemplateType); !ok {
		return nil, fmt.Errorf("%w: unknown templateType %q", common.ErrorValidation, in.TemplateType)
	}

	var url string
	if s.presigner != nil {
		u, err := s.presigner.PresignGet(ctx, storage.TemplateKey(in.TemplateType))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorDependencyUnavailable, err)
		}
		url = u
	}

	use, err := s.repomanager.Templates(s.db).Create(ctx, &models.TemplateUse{
		ID:           uuid.NewString(),
		UserID:       caller.UserID,
		TemplateType: in.TemplateType,
		Phase:        in.Phase,
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.events, s.logger, events.NewEvent(events.TemplateUsed, caller.UserID, use.ID))
	return &TemplateDownload{Template: use, DownloadURL: url}, nil
}

// List returns the caller's downloads, most recent first.
func (s *TemplateService) List(ctx context.Context, caller Caller) ([]*models.TemplateUse, error) {
	return s.repomanager.Templates(s.db).ListByUser(ctx, caller.UserID)
}
