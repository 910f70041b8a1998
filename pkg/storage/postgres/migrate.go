package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"domainvar/pkg/logger"
	"domainvar/pkg/storage"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// MigrationsDir is the directory inside the migrations filesystem that holds
// the goose SQL files.
const MigrationsDir = "migrations"

// Migrate applies every pending goose migration found under MigrationsDir in
// fsys. It must be called on a non-transactional PgSQL.
func (p *PgSQL) Migrate(ctx context.Context, fsys fs.FS) error {
	db, ok := p.DB.(*sql.DB)
	if !ok {
		return storage.ErrAlreadyInTx
	}

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(zap.NewStdLog(logger.Named(ctx, "goose")))

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set goose dialect to postgres: %w", err)
	}
	if err := goose.UpContext(ctx, db, MigrationsDir); err != nil {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}
