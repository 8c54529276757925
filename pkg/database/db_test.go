package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'UTC'", quoteLiteral("UTC"))
	assert.Equal(t, "'O''Brien'", quoteLiteral("O'Brien"))
}

func TestNow(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "postgres")

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT NOW\(\)`).WillReturnRows(sqlmock.NewRows([]string{"now"}).AddRow(ts))

	got, err := Now(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, got.Equal(ts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySessionSettings(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "postgres")

	mock.ExpectExec(`SET TIME ZONE 'America/Sao_Paulo'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SET client_encoding = 'UTF8'`).WillReturnError(errors.New("bad encoding"))

	err = applySessionSettings(context.Background(), db, Config{TimeZone: "America/Sao_Paulo", ClientEncoding: "UTF8"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set client_encoding")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_UsesEmbeddedDir(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), nil))
	assert.Equal(t, migrationsDir, gotDir)

	entries, err := migrations.ReadDir(migrationsDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestMigrate_WrapsError(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	gooseUp = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	err := Migrate(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate up: boom")
}
