package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
	"github.com/dmitrijs2005/dadkeeper/internal/dbx"
	"github.com/dmitrijs2005/dadkeeper/internal/server/models"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/drafts"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/journals"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/templates"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// newTxDB returns a real *sql.DB so dbx.WithTx can begin and commit. The
// fake repositories ignore the handle they are bound to.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// memStore backs every fake repository with maps and mimics the SQL
// semantics the services rely on.
type memStore struct {
	mu        sync.Mutex
	clock     time.Time
	users     map[string]*models.User
	tokens    map[string]*models.RefreshToken
	profiles  map[string]*models.Profile // by user id
	journals  map[string]*models.JournalEntry
	drafts    map[string]*models.AiDraft
	templates []*models.TemplateUse

	// failNext makes the next repository call return this error.
	failNext error
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		users:    map[string]*models.User{},
		tokens:   map[string]*models.RefreshToken{},
		profiles: map[string]*models.Profile{},
		journals: map[string]*models.JournalEntry{},
		drafts:   map[string]*models.AiDraft{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) fail() error {
	err := m.failNext
	m.failNext = nil
	return err
}

type fakeManager struct{ s *memStore }

func (f fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f fakeManager) Users(dbx.DBTX) users.Repository { return fakeUsers{f.s} }
func (f fakeManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return fakeTokens{f.s} }
func (f fakeManager) Profiles(dbx.DBTX) profiles.Repository { return fakeProfiles{f.s} }
func (f fakeManager) Journals(dbx.DBTX) journals.Repository { return fakeJournals{f.s} }
func (f fakeManager) Drafts(dbx.DBTX) drafts.Repository { return fakeDrafts{f.s} }
func (f fakeManager) Templates(dbx.DBTX) templates.Repository { return fakeTemplates{f.s} }

type fakeUsers struct{ s *memStore }

func (r fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.CreatedAt = r.s.tick()
	r.s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

// Delete cascades like the foreign keys do.
func (r fakeUsers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.users, id)
	delete(r.s.profiles, id)
	for k, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, k)
		}
	}
	for k, e := range r.s.journals {
		if e.UserID == id {
			delete(r.s.journals, k)
		}
	}
	for k, d := range r.s.drafts {
		if d.UserID == id {
			delete(r.s.drafts, k)
		}
	}
	kept := r.s.templates[:0]
	for _, t := range r.s.templates {
		if t.UserID != id {
			kept = append(kept, t)
		}
	}
	r.s.templates = kept
	return nil
}

type fakeTokens struct{ s *memStore }

func (r fakeTokens) Create(_ context.Context, userID, token string, validity time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r fakeTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (r fakeTokens) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.tokens, token)
	return nil
}

type fakeProfiles struct{ s *memStore }

func (r fakeProfiles) FindByUser(_ context.Context, userID string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (r fakeProfiles) Upsert(_ context.Context, id, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		p = &models.Profile{ID: id, UserID: userID, CreatedAt: r.s.tick()}
		r.s.profiles[userID] = p
	}
	if patch.Name != nil {
		p.Name = patch.Name
	}
	if patch.LegalSituation != nil {
		p.LegalSituation = patch.LegalSituation
	}
	if patch.ChildDetails != nil {
		p.ChildDetails = patch.ChildDetails
	}
	if patch.EmergencyContacts != nil {
		p.EmergencyContacts = patch.EmergencyContacts
	}
	if patch.UnderAvo != nil {
		p.UnderAvo = patch.UnderAvo
	}
	if patch.OnboardingCompleted != nil {
		p.OnboardingCompleted = *patch.OnboardingCompleted
	}
	c := *p
	return &c, nil
}

type fakeJournals struct{ s *memStore }

func (r fakeJournals) ListByUser(_ context.Context, userID string) ([]*models.JournalEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.JournalEntry, 0)
	for _, e := range r.s.journals {
		if e.UserID == userID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r fakeJournals) Find(_ context.Context, id string) (*models.JournalEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.journals[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (r fakeJournals) Create(_ context.Context, e *models.JournalEntry) (*models.JournalEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	c := *e
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.journals[c.ID] = &c
	out := c
	return &out, nil
}

func (r fakeJournals) Update(_ context.Context, userID, id string, patch models.JournalPatch) (*models.JournalEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	e, ok := r.s.journals[id]
	if !ok || e.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.PromptUsed != nil {
		e.PromptUsed = patch.PromptUsed
	}
	e.UpdatedAt = r.s.tick()
	c := *e
	return &c, nil
}

func (r fakeJournals) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.journals[id]
	if !ok || e.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.s.journals, id)
	return nil
}

type fakeDrafts struct{ s *memStore }

func (r fakeDrafts) ListByUser(_ context.Context, userID string) ([]*models.AiDraft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.AiDraft, 0)
	for _, d := range r.s.drafts {
		if d.UserID == userID {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeDrafts) Find(_ context.Context, id string) (*models.AiDraft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.drafts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *d
	return &c, nil
}

func (r fakeDrafts) Create(_ context.Context, d *models.AiDraft) (*models.AiDraft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	c := *d
	c.CreatedAt = r.s.tick()
	r.s.drafts[c.ID] = &c
	out := c
	return &out, nil
}

func (r fakeDrafts) UpdateFlags(_ context.Context, userID, id string, patch models.DraftFlagsPatch) (*models.AiDraft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.drafts[id]
	if !ok || d.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if patch.AcceptedDisclaimer != nil {
		d.AcceptedDisclaimer = *patch.AcceptedDisclaimer
	}
	if patch.Exported != nil {
		d.Exported = *patch.Exported
	}
	c := *d
	return &c, nil
}

type fakeTemplates struct{ s *memStore }

func (r fakeTemplates) Create(_ context.Context, u *models.TemplateUse) (*models.TemplateUse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(); err != nil {
		return nil, err
	}
	c := *u
	c.DownloadedAt = r.s.tick()
	r.s.templates = append(r.s.templates, &c)
	out := c
	return &out, nil
}

func (r fakeTemplates) ListByUser(_ context.Context, userID string) ([]*models.TemplateUse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.TemplateUse, 0)
	for i := len(r.s.templates) - 1; i >= 0; i-- {
		if t := r.s.templates[i]; t.UserID == userID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

// recordingPublisher captures event types in order.
type recordingPublisher struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
	return p.err
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}

// mapCache is an in-memory ProfileCache that can be told to fail.
// beforeSet, when set, runs once ahead of the next Set.
type mapCache struct {
	mu        sync.Mutex
	items     map[string]cacheEntry
	gens      map[string]int64
	err       error
	gets      int
	beforeSet func()
}

type cacheEntry struct {
	gen int64
	p   models.Profile
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string]cacheEntry{}, gens: map[string]int64{}}
}

func (c *mapCache) Get(_ context.Context, userID string) (*models.Profile, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return nil, 0, c.err
	}
	gen := c.gens[userID]
	e, ok := c.items[userID]
	if !ok || e.gen != gen {
		return nil, gen, common.ErrorNotFound
	}
	cp := e.p
	return &cp, gen, nil
}

func (c *mapCache) Set(_ context.Context, p *models.Profile, gen int64) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.items[p.UserID] = cacheEntry{gen: gen, p: *p}
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.gens[userID]++
	delete(c.items, userID)
	return nil
}

func ptr[T any](v T) *T { return &v }
