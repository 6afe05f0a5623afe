package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/SketchMorph/fitenglish-server/internal/api"
	"github.com/SketchMorph/fitenglish-server/internal/config"
	"github.com/SketchMorph/fitenglish-server/internal/metrics"
	"github.com/SketchMorph/fitenglish-server/internal/repository"
	"github.com/SketchMorph/fitenglish-server/internal/storage"
	"github.com/SketchMorph/fitenglish-server/internal/stt"
)

func main() {
	baseLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()

	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		sugar.Infow("no .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		sugar.Fatalw("failed to load configuration", "error", err)
	}

	// Default to release mode; set GIN_MODE=debug to get gin's request dump.
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	repo := buildRepository(cfg, sugar)

	store, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		sugar.Fatalw("failed to prepare upload directory", "dir", cfg.UploadDir, "error", err)
	}

	provider, err := stt.NewProvider(cfg.STT, sugar)
	if err != nil {
		sugar.Fatalw("failed to create stt provider", "error", err)
	}
	retrying := stt.WithRetry(provider, cfg.STT, sugar)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	handler := api.New(cfg, sugar, retrying, store, repo, metrics.NewRegistry())
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("fitenglish backend running",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"stt_provider", provider.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}

// buildRepository connects to Postgres when DATABASE_URL is set and falls
// back to in-memory storage otherwise, so the server always comes up.
func buildRepository(cfg *config.Config, sugar *zap.SugaredLogger) repository.AttemptRepository {
	if cfg.DatabaseURL == "" {
		sugar.Infow("DATABASE_URL not set, storing attempts in memory")
		return repository.NewMemoryRepository()
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		sugar.Warnw("failed to open postgres, continuing with in-memory storage", "error", err)
		return repository.NewMemoryRepository()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		sugar.Warnw("postgres ping failed, continuing with in-memory storage", "error", err)
		db.Close()
		return repository.NewMemoryRepository()
	}

	repo, err := repository.NewPostgresRepository(ctx, db)
	if err != nil {
		sugar.Warnw("failed to prepare attempts table, continuing with in-memory storage", "error", err)
		db.Close()
		return repository.NewMemoryRepository()
	}

	sugar.Infow("postgres repository initialized")
	return repo
}

// corsMiddleware adds CORS headers for the mobile app.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-User-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
