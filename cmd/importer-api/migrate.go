package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apiserver "github.com/acme/product-importer/internal/api_server"
	"github.com/acme/product-importer/internal/config"
	"github.com/acme/product-importer/internal/store"
	"github.com/acme/product-importer/pkg/log"
	"github.com/acme/product-importer/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			zap.S().Fatalw("reading configuration", "error", err)
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}

		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Migrating the database")
		defer zap.S().Info("Db migrated")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if cfg.Service.MigrationFolder == "" {
			return s.InitialMigration()
		}

		pool, err := apiserver.NewPgxPool(context.Background(), cfg)
		if err != nil {
			zap.S().Fatalw("initializing pgx pool", "error", err)
		}
		defer pool.Close()

		return migrations.MigrateStore(db, cfg.Service.MigrationFolder, pool)
	},
}
