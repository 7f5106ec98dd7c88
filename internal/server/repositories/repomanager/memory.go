package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medimate/internal/dbx"
	"github.com/dmitrijs2005/medimate/internal/server/repositories/records"
	"github.com/dmitrijs2005/medimate/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out the same map-backed repositories for
// every DBTX, including nil.
type InMemoryRepositoryManager struct {
	users   *users.InMemoryRepository
	records *records.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:   users.NewInMemoryRepository(),
		records: records.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Records(dbx.DBTX) records.Repository {
	return m.records
}

// NoTx runs fn directly; the in-memory repositories have no transactions.
type NoTx struct{}

func (NoTx) InTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}
