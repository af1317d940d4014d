package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "animator-service/docs"
	"animator-service/internal/config"
	"animator-service/internal/feed"
	"animator-service/internal/logging"
	"animator-service/internal/models"
	"animator-service/internal/persist"
	"animator-service/internal/reconcile"
	"animator-service/internal/remote"
	"animator-service/internal/repository/postgresql"
	"animator-service/internal/service"
	"animator-service/internal/staging"
	"animator-service/internal/store"
	httptransport "animator-service/internal/transport/http"
)

const (
	blobReapInterval = 30 * time.Second
	shutdownTimeout  = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reconciliation loops",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger, undo := logging.Init(cfg.LogLevel)
		defer func() { _ = logger.Sync() }()
		defer undo()

		if err := cfg.Validate(); err != nil {
			zap.S().Errorw("invalid configuration", "error", err)
			return err
		}
		zap.S().Infof("config %s", cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := zap.S().Named("main")

	// Postgres
	pool, err := postgresql.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Errorw("pg", "error", err)
		return err
	}
	defer pool.Close()

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Errorw("redis", "error", err)
		return err
	}
	defer rdb.Close()

	// MinIO
	uploader, err := staging.NewMinioUploader(
		staging.WithEndpoint(cfg.Staging.Endpoint),
		staging.WithBucket(cfg.Staging.Bucket),
		staging.WithCredentials(cfg.Staging.AccessKey, cfg.Staging.SecretKey),
		staging.WithPublicURL(cfg.Staging.PublicURL),
		staging.WithSSL(cfg.Staging.UseSSL),
	)
	if err != nil {
		log.Errorw("minio", "error", err)
		return err
	}
	if err := uploader.EnsureBucket(ctx); err != nil {
		// uploads will fail per shot until the bucket exists
		log.Warnw("staging bucket not ready", "bucket", cfg.Staging.Bucket, "error", err)
	}

	catalog := models.Default()
	if cfg.ModelCatalogPath != "" {
		if catalog, err = models.LoadFile(cfg.ModelCatalogPath); err != nil {
			log.Errorw("model catalog", "path", cfg.ModelCatalogPath, "error", err)
			return err
		}
	}

	// DI
	st := store.New()
	blobs := staging.NewBlobCache(cfg.Staging.BlobTTL)
	stager := staging.NewStager(blobs, uploader)
	client := remote.NewClient(cfg.Generation.APIURL, cfg.Generation.APIToken, cfg.Generation.RequestTimeout)
	svc := service.NewGenerationService(st, catalog, client, stager, service.WithConcurrency(cfg.Generation.DispatchConcurrency))

	persister := persist.New(st, snapshotBackend(cfg, rdb), cfg.Snapshot.Key, cfg.Snapshot.Debounce)
	if n, err := persister.Restore(ctx); err != nil {
		log.Warnw("snapshot not restored, starting empty", "error", err)
	} else if n > 0 {
		persister.Flush(ctx)
	}
	persister.Observe()

	statusFeed := feed.NewRedisFeed(rdb, cfg.Reconcile.ChannelPrefix)
	push := reconcile.NewPush(statusFeed, st, cfg.Reconcile.ResubscribeDelay)
	poll := reconcile.NewPoll(postgresql.NewGalleryRepository(pool), st, cfg.Reconcile.PollInterval, cfg.Reconcile.PollJitter)
	scheduler := reconcile.NewScheduler(st, push, poll)

	h := httptransport.NewHandler(st, svc, catalog, blobs, statusFeed, poll)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httptransport.Routes(h, cfg.FrontendURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error { return persister.Run(gctx) })

	// Reaper: периодически чистит просроченные загрузки из памяти
	g.Go(func() error {
		ticker := time.NewTicker(blobReapInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := blobs.Purge(); n > 0 {
					log.Infow("purged expired uploads", "count", n)
				}
			}
		}
	})

	g.Go(func() error {
		log.Infow("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Infow("service stopped", "error", err)
	return err
}

func snapshotBackend(cfg *config.Config, rdb redis.UniversalClient) persist.Backend {
	if cfg.Snapshot.Backend == "redis" {
		return persist.NewRedisStore(rdb, cfg.Snapshot.QuotaBytes)
	}
	return persist.NewFileStore(cfg.Snapshot.Path, cfg.Snapshot.QuotaBytes)
}
