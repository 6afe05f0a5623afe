package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SketchMorph/fitenglish-server/internal/config"
	"github.com/SketchMorph/fitenglish-server/internal/metrics"
	"github.com/SketchMorph/fitenglish-server/internal/repository"
	"github.com/SketchMorph/fitenglish-server/internal/storage"
	"github.com/SketchMorph/fitenglish-server/internal/stt"
	"github.com/SketchMorph/fitenglish-server/internal/utils"
)

// Handler carries the collaborators every endpoint needs. Everything is
// injected so tests can swap the provider or repository freely.
type Handler struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	provider stt.Provider
	store    *storage.Store
	repo     repository.AttemptRepository
	metrics  *metrics.Registry
}

// New builds a Handler from its collaborators.
func New(
	cfg *config.Config,
	log *zap.SugaredLogger,
	provider stt.Provider,
	store *storage.Store,
	repo repository.AttemptRepository,
	m *metrics.Registry,
) *Handler {
	return &Handler{
		cfg:      cfg,
		log:      log,
		provider: provider,
		store:    store,
		repo:     repo,
		metrics:  m,
	}
}

// RegisterRoutes wires all endpoints onto the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.healthCheck)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/attempts", h.createAttempt)
		v1.GET("/attempts", h.listAttempts)
		v1.GET("/attempts/:id", h.getAttempt)
		v1.DELETE("/attempts/:id", h.deleteAttempt)
		v1.POST("/score", h.scoreText)
	}
}

// healthCheck returns server health status.
func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "fitenglish-backend",
	})
}
