package services

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/logging"
	"github.com/dmitrijs2005/dadkeeper/internal/server/config"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	db    *sql.DB
	store *memStore
	rm    fakeManager
	pub   *recordingPublisher
	cache *mapCache
	log   logging.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	return &fixture{
		db:    newTxDB(t),
		store: store,
		rm:    fakeManager{store},
		pub:   &recordingPublisher{},
		cache: newMapCache(),
		log:   logging.NewNop(),
	}
}

func (f *fixture) users() *UserService {
	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}
	return NewUserService(f.db, f.rm, cfg, f.cache, f.pub, f.log)
}

func (f *fixture) profiles() *ProfileService {
	return NewProfileService(f.db, f.rm, f.cache, f.pub, f.log)
}

func (f *fixture) journals() *JournalService {
	return NewJournalService(f.db, f.rm, f.pub, f.log)
}

func (f *fixture) drafts() *DraftService {
	return NewDraftService(f.db, f.rm, f.pub, f.log)
}
