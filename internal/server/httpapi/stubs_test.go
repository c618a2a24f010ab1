package httpapi

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/server/auth"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
	"github.com/dmitrijs2005/dadkeeper/internal/server/services"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("http-test-secret")

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, testSecret, time.Minute)
	require.NoError(t, err)
	return tok
}

type stubUsers struct {
	registered services.RegisterInput
	err        error
}

func (s *stubUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	s.registered = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: "u1", Email: in.Email, PasswordHash: "secret-hash"}, nil
}

func (s *stubUsers) Login(_ context.Context, in services.LoginInput) (*services.TokenPair, error) {
	if in.Password != "right-password" {
		return nil, common.ErrorUnauthorized
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s *stubUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	if token == "expired" {
		return nil, common.ErrRefreshTokenExpired
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (s *stubUsers) Me(_ context.Context, c services.Caller) (*models.User, error) {
	if c.UserID == "panic" {
		panic("boom")
	}
	return &models.User{ID: c.UserID, Email: "dad@example.com", PasswordHash: "secret-hash"}, nil
}

func (s *stubUsers) DeleteAccount(context.Context, services.Caller) error { return nil }

type stubProfiles struct {
	profile *models.Profile
	got     services.UpsertProfileInput
}

func (s *stubProfiles) Get(context.Context, services.Caller) (*models.Profile, error) {
	return s.profile, nil
}

func (s *stubProfiles) Upsert(_ context.Context, c services.Caller, in services.UpsertProfileInput) (*models.Profile, error) {
	s.got = in
	return &models.Profile{ID: "p1", UserID: c.UserID, Name: in.Name}, nil
}

// stubJournals stores entries keyed by id and enforces ownership the way
// the real service does.
type stubJournals struct {
	entries map[string]*models.JournalEntry
	listErr error
}

func (s *stubJournals) List(_ context.Context, c services.Caller) ([]*models.JournalEntry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.JournalEntry, 0)
	for _, e := range s.entries {
		if e.UserID == c.UserID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubJournals) Get(_ context.Context, c services.Caller, id string) (*models.JournalEntry, error) {
	e, ok := s.entries[id]
	if !ok || e.UserID != c.UserID {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (s *stubJournals) Create(_ context.Context, c services.Caller, in services.CreateJournalInput) (*models.JournalEntry, error) {
	if in.Content == "" || in.Date == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrorValidation)
	}
	e := &models.JournalEntry{ID: fmt.Sprintf("e%d", len(s.entries)+1), UserID: c.UserID, Date: in.Date, Content: in.Content, EntryType: "daily"}
	s.entries[e.ID] = e
	return e, nil
}

func (s *stubJournals) Update(ctx context.Context, c services.Caller, id string, in services.UpdateJournalInput) (*models.JournalEntry, error) {
	e, err := s.Get(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if in.Content != nil {
		e.Content = *in.Content
	}
	return e, nil
}

func (s *stubJournals) Delete(ctx context.Context, c services.Caller, id string) error {
	if _, err := s.Get(ctx, c, id); err != nil {
		return err
	}
	delete(s.entries, id)
	return nil
}

type stubDrafts struct {
	draft *models.AiDraft
}

func (s *stubDrafts) List(context.Context, services.Caller) ([]*models.AiDraft, error) {
	return []*models.AiDraft{s.draft}, nil
}

func (s *stubDrafts) Get(_ context.Context, c services.Caller, id string) (*models.AiDraft, error) {
	if id != s.draft.ID || c.UserID != s.draft.UserID {
		return nil, common.ErrorNotFound
	}
	return s.draft, nil
}

func (s *stubDrafts) Create(_ context.Context, c services.Caller, in services.CreateDraftInput) (*models.AiDraft, error) {
	return &models.AiDraft{ID: "d2", UserID: c.UserID, OriginalText: in.OriginalText, RewrittenText: in.RewrittenText}, nil
}

func (s *stubDrafts) Update(ctx context.Context, c services.Caller, id string, in services.UpdateDraftInput) (*models.AiDraft, error) {
	d, err := s.Get(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if in.Exported != nil {
		d.Exported = *in.Exported
	}
	return d, nil
}

type stubRewrite struct {
	err error
}

func (s *stubRewrite) Rewrite(_ context.Context, _ services.Caller, in services.RewriteInput) (*services.RewriteOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.RewriteOutput{RewrittenText: "calm: " + in.Text}, nil
}

type stubTemplates struct{}

func (stubTemplates) Record(_ context.Context, c services.Caller, in services.RecordTemplateInput) (*services.TemplateDownload, error) {
	return &services.TemplateDownload{
		Template:    &models.TemplateUse{ID: "t1", UserID: c.UserID, TemplateType: in.TemplateType},
		DownloadURL: "https://files/" + in.TemplateType,
	}, nil
}

func (stubTemplates) List(context.Context, services.Caller) ([]*models.TemplateUse, error) {
	return []*models.TemplateUse{}, nil
}
