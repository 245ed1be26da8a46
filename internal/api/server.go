package api

import (
	"context"
	"fmt"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/dsn"
	"hostcompare/internal/app/handler"
	"hostcompare/internal/app/mail"
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/migration"
	"hostcompare/internal/app/redis"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/storage"
	"hostcompare/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StartServer поднимает зависимости и обслуживает HTTP до отмены ctx.
func StartServer(ctx context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.SetupLogger()
	gin.SetMode(gin.ReleaseMode)
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	defer repo.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var (
		files  handler.FileStore
		images migration.ImageStore
	)
	if cfg.MinIO.Enabled() {
		minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		files, images = minioClient, minioClient
	} else {
		logrus.Warn("MinIO is not configured, uploads are disabled")
	}

	var (
		runner           *migration.Runner
		migrationService handler.MigrationService
	)
	if cfg.Migration.MySQLDSN != "" {
		runner = pkg.NewMigrationRunner(repo.DB(), cfg.Migration, images)
		migrationService = runner
	} else {
		logrus.Info("MYSQL_DSN is not set, migration endpoints are disabled")
	}

	notifier := mail.NewNotifier(mail.New(cfg.SMTP), cfg.SiteURL)
	authHandler := handler.NewAuthHandler(repo, redisClient, cfg)
	apiHandler := handler.NewAPIHandler(repo, files, redisClient, notifier, migrationService, authHandler, cfg)

	app := pkg.NewApp(
		cfg,
		gin.New(),
		handler.NewHandler(repo, files),
		apiHandler,
		middleware.NewAuthMiddleware(redisClient, repo, cfg),
		runner,
	)
	return app.RunApp(ctx)
}
