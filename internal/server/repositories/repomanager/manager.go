package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medimate/internal/dbx"
	"github.com/dmitrijs2005/medimate/internal/server/repositories/records"
	"github.com/dmitrijs2005/medimate/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so the same code
// path serves both plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
}
