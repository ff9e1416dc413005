package app

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/migrations"
)

// Migrator обёртка над goose с миграциями, вшитыми в бинарник
type Migrator struct {
	db     *sql.DB
	fsys   fs.FS
	dir    string
	logger *zap.Logger
}

// NewMigrator создаёт мигратор поверх пула
func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	// Goose работает с *sql.DB, поэтому открываем его поверх пула
	db := stdlib.OpenDBFromPool(pool)

	return &Migrator{
		db:     db,
		fsys:   migrations.FS,
		dir:    migrations.Dir,
		logger: logger,
	}, nil
}

// Up применяет все pending миграции
func (mg *Migrator) Up(ctx context.Context) error {
	mg.logger.Info("Applying database migrations")

	goose.SetBaseFS(mg.fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.UpContext(ctx, mg.db, mg.dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}

	mg.logger.Info("Migrations applied", zap.Int64("version", version))
	return nil
}

// Status печатает состояние каждой миграции
func (mg *Migrator) Status(ctx context.Context) error {
	goose.SetBaseFS(mg.fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.StatusContext(ctx, mg.db, mg.dir); err != nil {
		return fmt.Errorf("migrations status: %w", err)
	}
	return nil
}

// Version показывает текущую версию схемы
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close закрывает sql.DB, пул остаётся за вызывающим
func (mg *Migrator) Close() error {
	if mg.db != nil {
		return mg.db.Close()
	}
	return nil
}
