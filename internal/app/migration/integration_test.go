//go:build integration

package migration_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/migration"
	"hostcompare/internal/app/repository"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const legacySchema = `
CREATE TABLE users (id INT PRIMARY KEY, email VARCHAR(255), full_name VARCHAR(100), password VARCHAR(255), role INT, created_at DATETIME, updated_at DATETIME);
CREATE TABLE holdings (id INT PRIMARY KEY, name VARCHAR(100), slug VARCHAR(100), created_at DATETIME, updated_at DATETIME);
CREATE TABLE hostings (id INT PRIMARY KEY, name VARCHAR(100), slug VARCHAR(100), description TEXT, website_url VARCHAR(255), logo_url VARCHAR(255), holding_id INT NULL, is_published TINYINT(1), rating DECIMAL(3,2), review_count INT, created_at DATETIME, updated_at DATETIME);
CREATE TABLE tariffs (id INT PRIMARY KEY, hosting_id INT, name VARCHAR(100), price DECIMAL(10,2), period VARCHAR(10), disk_gb INT, bandwidth_gb INT, websites INT, is_active TINYINT(1), created_at DATETIME, updated_at DATETIME);
CREATE TABLE cms (id INT PRIMARY KEY, name VARCHAR(100), slug VARCHAR(100));
CREATE TABLE tariff_cms (tariff_id INT, cms_id INT);
INSERT INTO users VALUES (1, 'admin@example.com', 'Admin', 'hash', 2, NOW(), NOW());
INSERT INTO holdings VALUES (1, 'Group', 'group', NOW(), NOW());
INSERT INTO hostings VALUES
  (1, 'Beget', 'beget', '', 'https://beget.com', NULL, 1, 4.50, 2, NOW(), NOW()),
  (2, 'Timeweb', 'timeweb', '', 'https://timeweb.com', NULL, 0, 0, 0, NOW(), NOW()),
  (3, 'Reg', 'reg', '', '', NULL, 1, 0, 0, NOW(), NOW());
INSERT INTO tariffs VALUES (1, 1, 'Start', 199.00, 'month', 10, 0, 1, 1, NOW(), NOW());
INSERT INTO cms VALUES (1, 'WordPress', 'wordpress');
INSERT INTO tariff_cms VALUES (1, 1);
`

func startContainer(t *testing.T, pool *dockertest.Pool, opts *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()
	resource, err := pool.RunWithOptions(opts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	return resource
}

func TestMigrateMySQLToPostgres(t *testing.T) {
	ctx := context.Background()
	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	mysqlRes := startContainer(t, pool, &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=legacy"},
	})
	pgRes := startContainer(t, pool, &dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env:        []string{"POSTGRES_PASSWORD=pg", "POSTGRES_DB=hostcompare"},
	})

	mysqlDSN := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/legacy?multiStatements=true", mysqlRes.GetPort("3306/tcp"))
	var legacy *sql.DB
	require.NoError(t, pool.Retry(func() error {
		var e error
		legacy, e = sql.Open("mysql", mysqlDSN)
		if e != nil {
			return e
		}
		return legacy.Ping()
	}))
	t.Cleanup(func() { _ = legacy.Close() })
	_, err = legacy.Exec(legacySchema)
	require.NoError(t, err)

	pgDSN := fmt.Sprintf("host=127.0.0.1 port=%s user=postgres password=pg dbname=hostcompare sslmode=disable", pgRes.GetPort("5432/tcp"))
	var db *gorm.DB
	require.NoError(t, pool.Retry(func() error {
		var e error
		db, e = gorm.Open(postgres.Open(pgDSN), &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)})
		if e != nil {
			return e
		}
		sqlDB, e := db.DB()
		if e != nil {
			return e
		}
		return sqlDB.Ping()
	}))
	require.NoError(t, repository.Migrate(db))

	runner := migration.NewRunner(migration.Deps{
		OpenSource: func(ctx context.Context) (migration.Source, error) { return migration.OpenMySQL(ctx, mysqlDSN) },
		Sink:       migration.NewPostgresSink(db),
		Store:      migration.NewStatusStore(filepath.Join(t.TempDir(), "status.json")),
	}, 2)

	t.Run("dry run writes nothing", func(t *testing.T) {
		st, err := runner.Run(ctx, migration.Options{DryRun: true, SkipImages: true})
		require.NoError(t, err)
		assert.Equal(t, migration.StateCompleted, st.State)

		var count int64
		require.NoError(t, db.Model(&ds.Hosting{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	st, err := runner.Run(ctx, migration.Options{SkipImages: true})
	require.NoError(t, err)
	require.Equal(t, migration.StateCompleted, st.State, st.Error)

	repo := repository.NewWithDB(db)
	hosting, err := repo.GetHostingBySlug(ctx, "beget", true)
	require.NoError(t, err)
	assert.True(t, hosting.IsPublished)

	tariffs, err := repo.ActiveTariffsByHosting(ctx, hosting.ID)
	require.NoError(t, err)
	require.Len(t, tariffs, 1)
	require.Len(t, tariffs[0].CMS, 1)
	assert.Equal(t, "wordpress", tariffs[0].CMS[0].Slug)

	// последовательность сдвинута: новая запись не конфликтует по id
	fresh := &ds.Hosting{Name: "New", Slug: "new"}
	require.NoError(t, repo.CreateHosting(ctx, fresh))
	assert.EqualValues(t, 4, fresh.ID)

	t.Run("rerun is idempotent", func(t *testing.T) {
		st, err := runner.Run(ctx, migration.Options{SkipImages: true})
		require.NoError(t, err)
		for _, ts := range st.Tables {
			assert.Zero(t, ts.Written, ts.Name)
		}
	})
}
