package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"message-board/internal/backup"
	"message-board/internal/config"
	"message-board/internal/credential"
	"message-board/internal/graph"
	apphttp "message-board/internal/http"
	"message-board/internal/repository/sqlite"
	"message-board/internal/service"
	"message-board/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(ctx, sqlite.Options{
		URL:           cfg.Database.URL,
		MaxOpenConns:  cfg.Database.MaxOpenConns,
		MaxIdleConns:  cfg.Database.MaxIdleConns,
		BusyTimeoutMS: cfg.Database.BusyTimeoutMS,
	})
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db, logger); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	userService := service.NewUserService(
		sqlite.NewUserRepository(db),
		credential.NewHasher(credential.DefaultCost),
	)
	messageService := service.NewMessageService(sqlite.NewMessageRepository(db))

	schema, err := graph.NewSchema(userService, messageService, graph.Options{
		MaxDepth:       cfg.GraphQL.MaxDepth,
		MaxParallelism: cfg.GraphQL.MaxParallelism,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatalf("parse schema: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	apphttp.NewHandler(schema, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var manager backup.Manager
	if cfg.BackupEnabled() {
		manager, err = buildBackup(ctx, cfg, db, logger)
		if err != nil {
			logger.Fatalf("setup backup: %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if manager != nil {
		if err := manager.Start(gctx); err != nil {
			logger.Fatalf("start backup manager: %v", err)
		}
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("http shutdown: %v", err)
		}
		if manager != nil {
			manager.Shutdown()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
	logger.Info("bye")
}

func buildBackup(ctx context.Context, cfg config.Config, db *sql.DB, logger *logrus.Logger) (backup.Manager, error) {
	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	snapshot := func(ctx context.Context, path string) error {
		return sqlite.Snapshot(ctx, db, path)
	}
	return backup.NewManager(backup.Config{
		Bucket:    cfg.Backup.Bucket,
		KeyPrefix: cfg.Backup.KeyPrefix,
		Interval:  cfg.Backup.Interval,
		Keep:      cfg.Backup.Keep,
		DataDir:   cfg.Backup.DataDir,
		Logger:    logger,
	}, snapshot, storageSvc), nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("backing up to s3 bucket %s (region %s)", cfg.Backup.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
