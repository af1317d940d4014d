package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"animator-service/internal/config"
	"animator-service/internal/logging"
	"animator-service/internal/persist"
)

var repairCmd = &cobra.Command{
	Use:   "repair-snapshot",
	Short: "Rewrite the stored snapshot in repaired form",
	Long: "Loads the stored snapshot, strips references that cannot outlive a session, " +
		"fixes timestamps, fails interrupted retries and writes the result back.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger, undo := logging.Init(cfg.LogLevel)
		defer func() { _ = logger.Sync() }()
		defer undo()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		var rdb *redis.Client
		if cfg.Snapshot.Backend == "redis" {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			defer rdb.Close()
		}

		report, err := persist.RepairStored(ctx, snapshotBackend(cfg, rdb), cfg.Snapshot.Key, time.Now())
		if err != nil {
			zap.S().Errorw("repair failed", "key", cfg.Snapshot.Key, "error", err)
			return err
		}

		zap.S().Infow("snapshot repaired",
			"key", cfg.Snapshot.Key,
			"shots", report.Shots,
			"dropped_shots", report.DroppedShots,
			"dropped_references", report.DroppedReferences,
			"dropped_results", report.DroppedResults,
			"bad_timestamps", report.BadTimestamps,
			"interrupted_retries", report.InterruptedRetries,
		)
		return nil
	},
}
