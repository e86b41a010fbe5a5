package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rahelarnold98/xreco-nmr/internal/config"
	"github.com/rahelarnold98/xreco-nmr/internal/db"
	dbRedis "github.com/rahelarnold98/xreco-nmr/internal/db/redis"
	domfeature "github.com/rahelarnold98/xreco-nmr/internal/domain/feature"
	"github.com/rahelarnold98/xreco-nmr/internal/domain/search/mode"
	"github.com/rahelarnold98/xreco-nmr/internal/imaging"
	logpkg "github.com/rahelarnold98/xreco-nmr/internal/logger"
	"github.com/rahelarnold98/xreco-nmr/internal/metrics"
	basketrepo "github.com/rahelarnold98/xreco-nmr/internal/repository/basket"
	"github.com/rahelarnold98/xreco-nmr/internal/repository/embcache"
	featurerepo "github.com/rahelarnold98/xreco-nmr/internal/repository/feature"
	mediarepo "github.com/rahelarnold98/xreco-nmr/internal/repository/media"
	"github.com/rahelarnold98/xreco-nmr/internal/repository/thumbnail"
	chiTransport "github.com/rahelarnold98/xreco-nmr/internal/transport/chi"
	minioTransport "github.com/rahelarnold98/xreco-nmr/internal/transport/minio"
	openaiTransport "github.com/rahelarnold98/xreco-nmr/internal/transport/openai"
	temporalTransport "github.com/rahelarnold98/xreco-nmr/internal/transport/temporal"
	basketuc "github.com/rahelarnold98/xreco-nmr/internal/usecase/basket"
	healthuc "github.com/rahelarnold98/xreco-nmr/internal/usecase/health"
	ingestuc "github.com/rahelarnold98/xreco-nmr/internal/usecase/ingest"
	resourceuc "github.com/rahelarnold98/xreco-nmr/internal/usecase/resource"
	retrievaluc "github.com/rahelarnold98/xreco-nmr/internal/usecase/retrieval"
	"github.com/rahelarnold98/xreco-nmr/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, logpkg.Options{
		Level:   cfg.Logging.Level,
		Service: "nmr-backend",
		Version: version.Version,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting NMR backend",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("schema", cfg.Storage.Schema),
	)

	ctx := context.Background()
	metrics.RegisterDomainMetrics()

	// Descriptor store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		ClientName: "nmr-backend",
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Object store
	objects, err := minioTransport.New(minioTransport.Config{
		Endpoint:     cfg.ObjectStore.Endpoint,
		AccessKey:    cfg.ObjectStore.AccessKey,
		SecretKey:    cfg.ObjectStore.SecretKey,
		Region:       cfg.ObjectStore.Region,
		UseSSL:       cfg.ObjectStore.UseSSL,
		AssetsBucket: cfg.ObjectStore.AssetsBucket,
	})
	if err != nil {
		logger.Fatal("Failed to create object store client", zap.Error(err))
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		// The service still answers retrieval queries; ingest reports 503 until the store is back.
		logger.Warn("Object store buckets not ready", zap.Error(err))
	}

	// Pipeline engine
	engineCfg := temporalTransport.Config{
		Address:     cfg.Engine.Address,
		Namespace:   cfg.Engine.Namespace,
		TaskQueue:   cfg.Engine.TaskQueue,
		Workflow:    cfg.Engine.Workflow,
		Schema:      cfg.Storage.Schema,
		Bucket:      cfg.ObjectStore.AssetsBucket,
		DialTimeout: time.Duration(cfg.Engine.DialTimeoutSec) * time.Second,
	}
	temporalClient, err := temporalTransport.Dial(ctx, engineCfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to pipeline engine", zap.Error(err))
	}
	defer temporalClient.Close()
	engine := temporalTransport.New(temporalClient, engineCfg)

	// Repositories
	mediaRepo := mediarepo.New(store, cfg.Storage.KeyPrefix)
	basketRepo := basketrepo.New(store, cfg.Storage.KeyPrefix)
	schemas, err := descriptorSchemas(cfg.Features)
	if err != nil {
		logger.Fatal("Invalid descriptor configuration", zap.Error(err))
	}
	featureRepo := featurerepo.New(store, cfg.Storage.KeyPrefix).
		WithHNSW(featurerepo.HNSWConfig{
			M:           cfg.Features.HNSWM,
			EFConstruct: cfg.Features.HNSWEFConstruct,
		}).
		WithSchemas(schemas...)
	thumbs := thumbnail.New(cfg.Media.Thumbnails)
	if err := thumbs.EnsureDir(); err != nil {
		logger.Fatal("Thumbnail directory not usable", zap.String("dir", cfg.Media.Thumbnails), zap.Error(err))
	}

	// Text encoder for semantic queries on CLIP vectors. Nil interface when unset.
	var extractor retrievaluc.Extractor
	var extractorCheck healthuc.Checker
	if cfg.Features.Extractor.BaseURL != "" {
		x := openaiTransport.NewExtractor(&openaiTransport.Config{
			APIKey:     cfg.Features.Extractor.APIKey,
			BaseURL:    cfg.Features.Extractor.BaseURL,
			Model:      cfg.Features.Extractor.Model,
			Dimensions: cfg.Features.ClipDimensions,
			Timeout:    time.Duration(cfg.Features.Extractor.TimeoutSec) * time.Second,
			Logger:     logger,
		})
		extractor, extractorCheck = x, x
		if ttl := cfg.Features.Extractor.CacheTTLSec; ttl > 0 {
			extractor = embcache.New(x, store, embcache.Config{
				KeyPrefix:  cfg.Storage.KeyPrefix,
				Model:      cfg.Features.Extractor.Model,
				TTL:        time.Duration(ttl) * time.Second,
				CacheTotal: metrics.ExtractorCacheTotal,
				Logger:     logger,
			})
		}
		logger.Info("Text encoder configured",
			zap.String("base_url", cfg.Features.Extractor.BaseURL),
			zap.String("model", cfg.Features.Extractor.Model),
		)
	}

	if cfg.Features.AutoCreateIndex {
		if err := ensureIndexes(ctx, featureRepo, schemas); err != nil {
			logger.Fatal("Failed to create descriptor indexes", zap.Error(err))
		}
	}

	grabber := imaging.NewFrameGrabber(cfg.Media.FFmpeg, time.Duration(cfg.Media.FrameTimeoutSec)*time.Second)
	if err := grabber.Ready(); err != nil {
		logger.Warn("Video previews disabled", zap.Error(err))
	}

	// Use cases
	retrievalSvc := retrievaluc.New(mediaRepo, featureRepo,
		retrievaluc.Entity{Name: domfeature.EntityLandmark, Mode: mode.Text},
		retrievaluc.Entity{Name: domfeature.EntityClip, Mode: mode.Vector, Extractor: extractor},
	)
	basketSvc := basketuc.New(basketRepo)
	resourceSvc := resourceuc.New(mediaRepo, featureRepo, thumbs, grabber, resourceuc.Config{
		Root:          cfg.Media.Root,
		ThumbnailSize: cfg.Media.ThumbnailSize,
		JPEGQuality:   cfg.Media.JPEGQuality,
		// every CLIP descriptor of a video covers one shot segment
		SegmentEntity: domfeature.EntityClip,
	})
	ingestSvc := ingestuc.New(objects, engine)
	healthSvc := healthuc.New(2*time.Second,
		healthuc.Component{Name: "store", Required: true, Checker: healthuc.CheckerFunc(store.Ping)},
		healthuc.Component{Name: "object_store", Checker: objects},
		healthuc.Component{Name: "engine", Checker: engine},
		healthuc.Component{Name: "extractor", Checker: extractorCheck},
		healthuc.Component{Name: "ffmpeg", Checker: healthuc.CheckerFunc(func(context.Context) error {
			return grabber.Ready()
		})},
	)

	server := chiTransport.NewServer(chiTransport.Services{
		Baskets:   basketSvc,
		Retrieval: retrievalSvc,
		Resources: resourceSvc,
		Ingest:    ingestSvc,
		Health:    healthSvc,
	})

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.Options{BaseRouter: r, BaseURL: "/api"})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// descriptorSchemas lists every known descriptor entity.
func descriptorSchemas(cfg config.FeaturesConfig) ([]featurerepo.Schema, error) {
	distance, err := db.ParseDistance(cfg.ClipDistance)
	if err != nil {
		return nil, fmt.Errorf("clip distance: %w", err)
	}
	return []featurerepo.Schema{
		{Entity: domfeature.EntityLandmark, Mode: mode.Text},
		{Entity: domfeature.EntityClip, Mode: mode.Vector, Dim: cfg.ClipDimensions, Distance: distance},
	}, nil
}

// ensureIndexes creates the FT index of every descriptor entity.
func ensureIndexes(ctx context.Context, repo *featurerepo.Repo, schemas []featurerepo.Schema) error {
	for _, s := range schemas {
		if err := repo.EnsureIndex(ctx, s); err != nil {
			return fmt.Errorf("index %s: %w", s.Entity, err)
		}
	}
	return nil
}
