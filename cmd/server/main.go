// @title           Repurpose Backend API
// @version         1.0.0
// @description     Turns YouTube videos into transcripts and derived content (shorts scripts, blog posts, threads, carousels, captions, thumbnails). Work runs on background queues; clients poll for results.

// @BasePath  /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"repurpose-backend/internal/ai"
	"repurpose-backend/internal/config"
	"repurpose-backend/internal/database"
	"repurpose-backend/internal/generator"
	"repurpose-backend/internal/handlers"
	"repurpose-backend/internal/httputil"
	"repurpose-backend/internal/logging"
	"repurpose-backend/internal/middleware"
	"repurpose-backend/internal/pipeline"
	"repurpose-backend/internal/queue"
	"repurpose-backend/internal/services"
	"repurpose-backend/internal/supabase"
	"repurpose-backend/internal/ytdlp"
)

const (
	shutdownTimeout = 30 * time.Second
	janitorInterval = 5 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database client: %w", err)
	}
	defer dbClient.Close()

	if cfg.RunMigrations {
		if err := database.NewMigrator(dbClient.DB(), logger).Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	if err != nil {
		return fmt.Errorf("failed to initialize storage client: %w", err)
	}

	redisOpt := queue.RedisOptions{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	queueClient := queue.NewClient(redisOpt)
	defer queueClient.Close()

	verifier, err := tokenVerifier(cfg, logger)
	if err != nil {
		return err
	}

	videoService := services.NewVideoService(dbClient, dbClient, queueClient, storageClient, logger)
	contentService := services.NewContentService(dbClient, dbClient, dbClient, queueClient, logger)
	profileService := services.NewProfileService(dbClient)

	router := handlers.NewRouter(handlers.RouterConfig{
		Production:  cfg.IsProduction(),
		FrontendURL: cfg.FrontendURL,
		Verifier:    verifier,
		Logger:      logger,
		Videos:      handlers.NewVideosHandler(videoService),
		Content:     handlers.NewContentHandler(contentService),
		Profile:     handlers.NewProfileHandler(profileService),
		Health:      handlers.NewHealthHandler(dbClient, queueClient),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.RunWorkers {
		workerServer, err := startWorkers(cfg, logger, redisOpt, dbClient, storageClient)
		if err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			workerServer.Shutdown()
			return nil
		})

		retention := make(map[string]queue.Options, len(queue.Names))
		for _, name := range queue.Names {
			retention[name] = queue.DefaultOptions(name)
		}
		janitor := queue.NewJanitor(redisOpt, retention, janitorInterval, logger)
		g.Go(func() error {
			return janitor.Run(gctx)
		})
	}

	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// tokenVerifier checks tokens locally when the JWT secret is configured and
// falls back to asking Supabase Auth otherwise.
func tokenVerifier(cfg *config.Config, logger *slog.Logger) (middleware.TokenVerifier, error) {
	if cfg.SupabaseJWTSecret != "" {
		return middleware.NewJWTVerifier(cfg.SupabaseJWTSecret), nil
	}

	logger.Warn("SUPABASE_JWT_SECRET not set, verifying tokens remotely")
	client, err := supabase.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize supabase client: %w", err)
	}
	return client, nil
}

func startWorkers(cfg *config.Config, logger *slog.Logger, redisOpt queue.RedisOptions, dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient) (*queue.Server, error) {
	deps := ytdlp.DependencyStatus(cfg.YTDLPPath)
	logger.Info("dependency check",
		"yt_dlp", deps.YTDLPFound,
		"yt_dlp_path", deps.YTDLPPath,
		"ffmpeg", deps.FFmpegFound,
		"ffmpeg_path", deps.FFmpegPath,
	)
	if !deps.YTDLPFound || !deps.FFmpegFound {
		logger.Warn("audio pipeline dependencies missing, transcription jobs will fail")
	}

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	prompts, err := generator.LoadPrompts()
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	aiClient := ai.NewClient(ai.Config{
		APIKey:             cfg.OpenAIAPIKey,
		BaseURL:            cfg.OpenAIBaseURL,
		ChatModel:          cfg.OpenAIChatModel,
		ImageModel:         cfg.OpenAIImageModel,
		TranscriptionModel: cfg.OpenAITranscriptionModel,
		Language:           cfg.TranscriptionLanguage,
	})
	fetcher := httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())

	workers := pipeline.NewWorkers(
		pipeline.StageDeps{Content: dbClient, Credits: dbClient, Logger: logger},
		generator.New(aiClient, prompts, logger),
		generator.NewThumbnailGenerator(aiClient, aiClient, fetcher, storageClient, prompts, logger),
		pipeline.NewTranscriptionWorker(dbClient, ytdlp.NewClient(cfg.YTDLPPath), aiClient, cfg.TempDir, cfg.MaxAudioBytes(), logger),
	)

	workerServer := queue.NewServer(redisOpt, logger, logging.NewQueueLogger(logger))
	workers.Register(workerServer)
	if err := workerServer.Start(); err != nil {
		return nil, err
	}
	return workerServer, nil
}
