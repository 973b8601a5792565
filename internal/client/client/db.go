package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/userdash/internal/client/migrations"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdash/internal/client/repositories/users"
	"github.com/dmitrijs2005/userdash/internal/common"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Users    *users.SQLiteRepository
	Metadata *metadata.SQLiteRepository
}

func NewRepositories(db *sql.DB, userOpts ...users.Option) *Repositories {
	return &Repositories{
		DB:       db,
		Users:    users.NewSQLiteRepository(db, userOpts...),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

// RunMigrations applies the embedded schema. Already applied versions are
// skipped, so repeated calls are safe.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w: %w", common.ErrSchema, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w: %w", common.ErrSchema, err)
	}
	return nil
}

// InitDatabase opens the SQLite file at dsn and brings its schema up to
// date. The pool is limited to a single connection.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w: %w", dsn, common.ErrSchema, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %s: %w: %w", dsn, common.ErrSchema, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
