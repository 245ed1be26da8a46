package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/migration"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/storage"
	"hostcompare/internal/pkg"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dryRun     bool
	skipImages bool
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "mysql2pg",
	Short: "Перенос данных старого сайта из MySQL в PostgreSQL",
	Long: `Копирует таблицы старой MySQL-базы в PostgreSQL пакетами, по стадиям
с учётом внешних ключей, затем переносит картинки по внешним ссылкам в MinIO.

Настройки читаются из окружения и файла --env (по умолчанию .env.migration):
  MYSQL_DSN, POSTGRES_DSN, MIGRATION_BATCH_SIZE, MIGRATION_STATUS_FILE, MINIO_*

Итоговый статус печатается в stdout как JSON и сохраняется в файл статуса.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "только прочитать источник, ничего не записывая")
	rootCmd.Flags().BoolVar(&skipImages, "skip-images", false, "не переносить картинки в MinIO")
	rootCmd.Flags().StringVar(&envFile, "env", ".env.migration", "файл с переменными окружения")
}

func run(cmd *cobra.Command, _ []string) error {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	mcfg, minioCfg, err := config.MigrationFromEnv(envFile)
	if err != nil {
		return err
	}
	if mcfg.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN (or DB_* variables) must be set")
	}

	ctx := cmd.Context()
	repo, err := repository.New(mcfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer repo.Close()

	var images migration.ImageStore
	if !skipImages && !dryRun {
		if !minioCfg.Enabled() {
			return errors.New("MINIO_ENDPOINT must be set, or pass --skip-images")
		}
		client, err := storage.NewMinIOClient(ctx, minioCfg)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		images = client
	}

	runner := pkg.NewMigrationRunner(repo.DB(), mcfg, images)
	st, runErr := runner.Run(ctx, migration.Options{DryRun: dryRun, SkipImages: skipImages})

	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return runErr
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(1)
	}
}
