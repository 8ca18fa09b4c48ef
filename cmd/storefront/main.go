package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/apparel-storefront/internal/api"
	"github.com/example/apparel-storefront/internal/auth"
	"github.com/example/apparel-storefront/internal/config"
	"github.com/example/apparel-storefront/internal/domain/cart"
	"github.com/example/apparel-storefront/internal/domain/catalog"
	"github.com/example/apparel-storefront/internal/domain/siteinfo"
	"github.com/example/apparel-storefront/internal/events"
	"github.com/example/apparel-storefront/internal/infrastructure/kafka"
	"github.com/example/apparel-storefront/internal/infrastructure/localstore"
	"github.com/example/apparel-storefront/internal/infrastructure/objectstore"
	"github.com/example/apparel-storefront/internal/infrastructure/store"
	"github.com/example/apparel-storefront/internal/logging"
	"github.com/example/apparel-storefront/internal/media"
	"github.com/example/apparel-storefront/internal/revalidation"
)

// localUploadsPath serves in-memory uploads when no S3 bucket is configured.
const localUploadsPath = "/uploads"

// remoteStore is satisfied by both store.Postgres and store.Memory.
type remoteStore interface {
	store.ProductStore
	store.SiteInfoStore
	store.UserCartStore
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting storefront",
		"addr", cfg.Addr(),
		"instance", cfg.InstanceID,
		"postgres", cfg.DatabaseURL != "",
		"s3_bucket", cfg.S3Bucket,
		"kafka_brokers", cfg.KafkaBrokers,
	)

	// Remote relational store
	var remote remoteStore
	if cfg.DatabaseURL != "" {
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := store.EnsureSchema(ctx, db); err != nil {
			logger.Error("apply schema", "error", err)
			os.Exit(1)
		}
		remote = store.NewPostgres(db)
		logger.Info("connected to PostgreSQL")
	} else {
		remote = store.NewMemory()
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	// Local durable key-value store (cart mirror, catalog cache)
	local, err := localstore.OpenSQLite(cfg.LocalStorePath)
	if err != nil {
		logger.Error("open local store", "path", cfg.LocalStorePath, "error", err)
		os.Exit(1)
	}
	defer local.Close()

	// Object storage
	var bucket objectstore.Bucket
	var localUploads *objectstore.MemoryBucket
	if cfg.S3Bucket != "" {
		s3Bucket, err := objectstore.NewS3Bucket(ctx, objectstore.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Error("configure S3 bucket", "error", err)
			os.Exit(1)
		}
		bucket = s3Bucket
	} else {
		localUploads = objectstore.NewMemoryBucket(localUploadsPath)
		bucket = localUploads
		logger.Warn("S3_BUCKET not set, uploads are kept in memory", "served_at", localUploadsPath)
	}

	// Change fan-out
	var publisher events.Publisher = events.Nop{}
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.InstanceID)
		defer producer.Close()
		publisher = producer
	}

	// Domain services
	products := catalog.NewService(remote, local, publisher, logging.Component(logger, "catalog"))
	site := siteinfo.NewSynchronizer(remote, publisher, logging.Component(logger, "siteinfo"))
	carts := cart.NewRegistry(local, remote, logging.Component(logger, "cart"))
	uploader := media.NewUploader(bucket, cfg.ImagesFolder, logging.Component(logger, "media"))
	gallery := media.NewGallery(uploader, products, site)

	if err := products.Load(ctx); err != nil {
		logger.Warn("initial catalog load failed", "error", err, "products", len(products.List()))
	}
	if err := site.Load(ctx); err != nil {
		logger.Warn("initial site info load failed, serving defaults", "error", err)
	}

	// Identity
	creds, err := auth.ParseCredentials(cfg.AdminCredentials)
	if err != nil {
		logger.Error("parse ADMIN_CREDENTIALS", "error", err)
		os.Exit(1)
	}
	if creds.Len() == 0 {
		logger.Warn("ADMIN_CREDENTIALS is empty, admin sign-in is disabled")
	}
	authService := auth.NewService(creds, auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL))
	authLogger := logging.Component(logger, "auth")
	authService.Subscribe(func(e auth.Event) {
		authLogger.Info("session change", "type", string(e.Type), "email", e.Email)
	})

	// Revalidate when other instances change the catalog or site copy.
	var wg sync.WaitGroup
	if producer != nil {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic,
			"storefront-"+cfg.InstanceID, logging.Component(logger, "kafka"))
		defer consumer.Close()
		handler := revalidation.NewHandler(products, site, cfg.InstanceID, logging.Component(logger, "revalidation"))

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
				logger.Error("change consumer stopped", "error", err)
			}
		}()
	}

	// HTTP API
	apiLogger := logging.Component(logger, "api")
	handlers := api.NewHandlers(products, site, carts, gallery, uploader)
	authHandlers := api.NewAuthHandlers(authService)
	var router http.Handler = api.NewRouter(handlers, authHandlers, authService, apiLogger)
	if localUploads != nil {
		mux := http.NewServeMux()
		mux.Handle("GET "+localUploadsPath+"/", http.StripPrefix(localUploadsPath+"/", localUploads))
		mux.Handle("/", router)
		router = mux
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "addr", cfg.Addr())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}

	wg.Wait()
}
