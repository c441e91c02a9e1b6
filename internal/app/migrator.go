package app

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator применяет SQL-миграции через goose.Provider
type Migrator struct {
	provider *goose.Provider
	logger   *zap.Logger
}

// NewMigrator создаёт мигратор поверх отдельного *sql.DB из пула.
// Закрытие мигратора не закрывает сам пул
func NewMigrator(pool *pgxpool.Pool, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create goose provider: %w", err)
	}

	return &Migrator{provider: provider, logger: logger}, nil
}

// Run применяет все ожидающие миграции и логирует каждую применённую
func (mg *Migrator) Run(ctx context.Context) error {
	pending, err := mg.provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("check pending migrations: %w", err)
	}
	if !pending {
		version, err := mg.provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("get version: %w", err)
		}
		mg.logger.Info("Database schema is up to date", zap.Int64("version", version))
		return nil
	}

	results, err := mg.provider.Up(ctx)
	for _, res := range results {
		mg.logger.Info("Migration applied",
			zap.Int64("version", res.Source.Version),
			zap.String("path", res.Source.Path),
			zap.Duration("took", res.Duration),
		)
	}
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	mg.logger.Info("Migrations applied successfully", zap.Int("count", len(results)))
	return nil
}

func (mg *Migrator) Close() error {
	return mg.provider.Close()
}
