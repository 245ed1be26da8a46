// Package repotest поднимает репозиторий поверх in-memory SQLite для тестов.
package repotest

import (
	"fmt"
	"testing"

	"hostcompare/internal/app/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New возвращает изолированную базу со схемой; закрывается в t.Cleanup.
func New(t testing.TB) *repository.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open sqlite")

	require.NoError(t, repository.Migrate(db), "failed to migrate schema")

	repo := repository.NewWithDB(db)
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}
