package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dadkeeper/internal/dbx"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/drafts"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/journals"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/templates"
	"github.com/dmitrijs2005/dadkeeper/internal/server/repositories/users"
)

// RepositoryManager binds repositories to either the pool or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Journals(db dbx.DBTX) journals.Repository
	Drafts(db dbx.DBTX) drafts.Repository
	Templates(db dbx.DBTX) templates.Repository
}
