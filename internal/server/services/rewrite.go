package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
	"github.com/dmitrijs2005/dadkeeper/internal/server/validation"
)

// RewriteInput is a rewrite request. DisclaimerAccepted must be true.
type RewriteInput struct {
	Text               string `json:"text" validate:"required,max=10000"`
	DisclaimerAccepted bool   `json:"disclaimerAccepted"`
	SaveDraft          bool   `json:"saveDraft"`
}

// RewriteOutput carries Draft only when the caller asked to save one.
type RewriteOutput struct {
	RewrittenText  string          `json:"rewrittenText"`
	RiskHighlights *string         `json:"riskHighlights"`
	Draft          *models.AiDraft `json:"draft,omitempty"`
}

// RewriteService passes text to the language model and optionally keeps the
// result as a draft.
type RewriteService struct {
	rewriter Rewriter
	drafts   *DraftService
}

// NewRewriteService constructs a RewriteService that saves drafts through drafts.
func NewRewriteService(r Rewriter, drafts *DraftService) *RewriteService {
	return &RewriteService{rewriter: r, drafts: drafts}
}

// Rewrite validates in, calls the model and, when asked, saves a draft.
func (s *RewriteService) Rewrite(ctx context.Context, caller Caller, in RewriteInput) (*RewriteOutput, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.DisclaimerAccepted {
		return nil, fmt.Errorf("%w: disclaimerAccepted must be true", common.ErrorValidation)
	}

	res, err := s.rewriter.Rewrite(ctx, in.Text)
	if err != nil {
		return nil, err
	}

	out := &RewriteOutput{RewrittenText: res.RewrittenText, RiskHighlights: res.RiskHighlights}
	if !in.SaveDraft {
		return out, nil
	}

	accepted := true
	draft, err := s.drafts.Create(ctx, caller, CreateDraftInput{
		OriginalText:       in.Text,
		RewrittenText:      res.RewrittenText,
		RiskHighlights:     res.RiskHighlights,
		AcceptedDisclaimer: &accepted,
	})
	if err != nil {
		return nil, err
	}
	out.Draft = draft
	return out, nil
}
