package pkg

import (
	"context"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/migration"

	"gorm.io/gorm"
)

// NewMigrationRunner собирает перенос MySQL -> Postgres.
// images == nil - картинки остаются внешними ссылками.
func NewMigrationRunner(db *gorm.DB, cfg config.MigrationConfig, images migration.ImageStore) *migration.Runner {
	return migration.NewRunner(migration.Deps{
		OpenSource: func(ctx context.Context) (migration.Source, error) {
			src, err := migration.OpenMySQL(ctx, cfg.MySQLDSN)
			if err != nil {
				return nil, err
			}
			return src, nil
		},
		Sink:   migration.NewPostgresSink(db),
		Images: images,
		Store:  migration.NewStatusStore(cfg.StatusFile),
	}, cfg.BatchSize)
}
