package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/postplanner/internal/dbx"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/connections"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/items"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/users"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/workspaces"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Workspaces(db dbx.DBTX) workspaces.Repository
	Items(db dbx.DBTX) items.Repository
	Connections(db dbx.DBTX) connections.Repository
}
