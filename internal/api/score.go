package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SketchMorph/fitenglish-server/internal/scoring"
	"github.com/SketchMorph/fitenglish-server/internal/utils"
)

// ScoreRequest carries a target sentence and an existing transcript. The
// transcript may be empty; an empty reading is a scorable (if sad) event.
type ScoreRequest struct {
	Target     string `json:"target" binding:"required"`
	Transcript string `json:"transcript"`
}

// scoreText handles POST /api/v1/score. It scores a transcript that was
// produced elsewhere, with no audio involved. Useful for client-side
// recognizers and for replaying old attempts against the current rules.
func (h *Handler) scoreText(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "target is required")
		return
	}

	res := scoring.Score(req.Target, req.Transcript)
	h.metrics.ObserveAccuracy(res.Accuracy)

	utils.Success(c, gin.H{
		"target":     req.Target,
		"transcript": req.Transcript,
		"accuracy":   res.Accuracy,
		"tips":       res.Tips,
	})
}
