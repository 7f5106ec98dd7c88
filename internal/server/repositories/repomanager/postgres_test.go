package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/medimate/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.Records(db))
}

func TestRunMigrations_Success(t *testing.T) {
	db := newDB(t)

	var gotDialect, gotDir string
	origDialect, origUp := gooseSetDialect, gooseUpContext
	gooseSetDialect = func(d string) error { gotDialect = d; return nil }
	gooseUpContext = func(ctx context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	t.Cleanup(func() { gooseSetDialect, gooseUpContext = origDialect, origUp })

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, "pgx", gotDialect)
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_Errors(t *testing.T) {
	db := newDB(t)
	origDialect, origUp := gooseSetDialect, gooseUpContext
	t.Cleanup(func() { gooseSetDialect, gooseUpContext = origDialect, origUp })

	gooseSetDialect = func(string) error { return nil }
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Equal(t, "migration error: boom", err.Error())

	gooseSetDialect = func(string) error { return errors.New("bad dialect") }
	err = NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.ErrorContains(t, err, "goose dialect")
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_users.sql", "00002_audio_records.sql"}, names)
}
