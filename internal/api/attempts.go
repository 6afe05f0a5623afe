package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SketchMorph/fitenglish-server/internal/model"
	"github.com/SketchMorph/fitenglish-server/internal/repository"
	"github.com/SketchMorph/fitenglish-server/internal/scoring"
	"github.com/SketchMorph/fitenglish-server/internal/stt"
	"github.com/SketchMorph/fitenglish-server/internal/utils"
)

// iPhone records M4A by default; CAF, WAV, AIFF and MP3 show up through
// third-party apps.
var allowedExts = []string{".m4a", ".mp3", ".wav", ".aac", ".ogg", ".caf", ".aiff", ".aif"}

// createAttempt handles POST /api/v1/attempts. It takes a multipart form
// with the recorded audio and the target sentence, transcribes the audio,
// scores the transcript against the target and stores the attempt.
func (h *Handler) createAttempt(c *gin.Context) {
	target := strings.TrimSpace(c.PostForm("target"))
	if target == "" {
		utils.Error(c, http.StatusBadRequest, "target sentence is required")
		return
	}

	var userID *uuid.UUID
	if raw := c.PostForm("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid user_id format")
			return
		}
		userID = &parsed
	}

	file, err := h.audioFormFile(c)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "audio file is required (field: audio_file, audio or file)")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extAllowed(ext) {
		utils.Error(c, http.StatusBadRequest, "unsupported audio format. Supported: m4a, mp3, wav, aac, ogg, caf, aiff")
		return
	}

	maxBytes := h.cfg.MaxUploadMB << 20
	if file.Size > maxBytes {
		utils.Error(c, http.StatusBadRequest, "file size exceeds "+strconv.FormatInt(h.cfg.MaxUploadMB, 10)+"MB limit")
		return
	}

	saved, err := h.store.Save(file)
	if err != nil {
		h.log.Errorw("failed to save audio", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to save audio file")
		return
	}

	audio, err := os.ReadFile(saved.Path)
	if err != nil {
		h.log.Errorw("failed to read saved audio", "path", saved.Path, "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to read audio file")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.cfg.STT.TimeoutSeconds)*time.Second)
	defer cancel()

	start := time.Now()
	result, err := h.provider.Transcribe(ctx, audio, file.Filename)
	elapsed := time.Since(start)
	h.metrics.ObserveTranscription(h.provider.Name(), elapsed)

	if err != nil {
		if errors.Is(err, stt.ErrNoSpeech) {
			h.metrics.RecordAttempt(h.provider.Name(), "no_speech")
			utils.Error(c, http.StatusUnprocessableEntity, "no speech detected in the recording, please try again closer to the microphone")
			return
		}
		if errors.Is(err, stt.ErrAudioInvalid) {
			h.metrics.RecordAttempt(h.provider.Name(), "invalid_audio")
			utils.Error(c, http.StatusBadRequest, "audio file is too small to contain speech, it may be empty or corrupted")
			return
		}
		h.metrics.RecordAttempt(h.provider.Name(), "transcription_failed")
		h.log.Errorw("transcription failed",
			"provider", h.provider.Name(),
			"recording", saved.ID,
			"error", err,
		)
		msg := "transcription failed"
		if !h.cfg.IsProduction() {
			msg += ": " + err.Error()
		}
		utils.Error(c, http.StatusBadGateway, msg)
		return
	}

	res := scoring.Score(target, result.Transcript)
	h.metrics.RecordAttempt(h.provider.Name(), "scored")
	h.metrics.ObserveAccuracy(res.Accuracy)

	processingMs := int(elapsed.Milliseconds())
	attempt := &model.Attempt{
		ID:               uuid.New(),
		UserID:           userID,
		Target:           target,
		Transcript:       result.Transcript,
		Accuracy:         res.Accuracy,
		Tips:             res.Tips,
		Provider:         result.Provider,
		AudioPath:        &saved.Path,
		AudioSizeBytes:   &saved.Size,
		ProcessingTimeMs: &processingMs,
		CreatedAt:        time.Now().UTC(),
	}
	if result.Confidence > 0 {
		conf := result.Confidence
		attempt.Confidence = &conf
	}

	// Persistence is best effort: the learner still gets their score when
	// the database is down.
	if err := h.repo.Create(c.Request.Context(), attempt); err != nil {
		h.log.Errorw("failed to persist attempt", "attempt_id", attempt.ID, "error", err)
	}

	h.log.Infow("attempt scored",
		"attempt_id", attempt.ID,
		"provider", attempt.Provider,
		"accuracy", attempt.Accuracy,
		"duration", elapsed,
	)

	payload := gin.H{
		"attempt_id": attempt.ID.String(),
		"target":     attempt.Target,
		"transcript": attempt.Transcript,
		"accuracy":   attempt.Accuracy,
		"tips":       attempt.Tips,
		"provider":   attempt.Provider,
		"created_at": attempt.CreatedAt,
	}
	if attempt.Confidence != nil {
		payload["confidence"] = *attempt.Confidence
	}
	utils.Created(c, payload)
}

// listAttempts handles GET /api/v1/attempts with limit/offset pagination.
// user_id (query or X-User-ID header) narrows the listing to one learner.
func (h *Handler) listAttempts(c *gin.Context) {
	var userID *uuid.UUID
	raw := c.Query("user_id")
	if raw == "" {
		raw = c.GetHeader("X-User-ID")
	}
	if raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid user_id format")
			return
		}
		userID = &parsed
	}

	limit, offset := paginationParams(c)

	attempts, err := h.repo.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.log.Errorw("failed to list attempts", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve attempts")
		return
	}

	items := make([]gin.H, 0, len(attempts))
	for _, attempt := range attempts {
		item := gin.H{
			"id":         attempt.ID.String(),
			"target":     attempt.Target,
			"accuracy":   attempt.Accuracy,
			"provider":   attempt.Provider,
			"created_at": attempt.CreatedAt,
		}
		if attempt.UserID != nil {
			item["user_id"] = attempt.UserID.String()
		}
		// Transcript preview keeps list payloads small (first 100 chars).
		if attempt.Transcript != "" {
			preview := attempt.Transcript
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}
			item["transcript_preview"] = preview
		}
		items = append(items, item)
	}

	utils.Success(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"count":  len(items),
	})
}

// getAttempt handles GET /api/v1/attempts/:id.
func (h *Handler) getAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id format")
		return
	}

	attempt, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		utils.Error(c, http.StatusNotFound, "attempt not found")
		return
	}
	if err != nil {
		h.log.Errorw("failed to get attempt", "attempt_id", id, "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve attempt")
		return
	}

	response := gin.H{
		"id":         attempt.ID.String(),
		"target":     attempt.Target,
		"transcript": attempt.Transcript,
		"accuracy":   attempt.Accuracy,
		"tips":       attempt.Tips,
		"provider":   attempt.Provider,
		"created_at": attempt.CreatedAt,
	}
	if attempt.UserID != nil {
		response["user_id"] = attempt.UserID.String()
	}
	if attempt.Confidence != nil {
		response["confidence"] = *attempt.Confidence
	}
	if attempt.AudioSizeBytes != nil {
		response["audio_size_bytes"] = *attempt.AudioSizeBytes
	}
	if attempt.ProcessingTimeMs != nil {
		response["processing_time_ms"] = *attempt.ProcessingTimeMs
	}

	utils.Success(c, response)
}

// deleteAttempt handles DELETE /api/v1/attempts/:id. The stored audio
// file goes with the record.
func (h *Handler) deleteAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id format")
		return
	}

	attempt, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		utils.Error(c, http.StatusNotFound, "attempt not found")
		return
	}
	if err != nil {
		h.log.Errorw("failed to load attempt for delete", "attempt_id", id, "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to delete attempt")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Error(c, http.StatusNotFound, "attempt not found")
			return
		}
		h.log.Errorw("failed to delete attempt", "attempt_id", id, "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to delete attempt")
		return
	}

	if attempt.AudioPath != nil {
		if err := h.store.Remove(*attempt.AudioPath); err != nil && !os.IsNotExist(err) {
			h.log.Warnw("failed to remove audio file", "path", *attempt.AudioPath, "error", err)
		}
	}

	h.log.Infow("attempt deleted", "attempt_id", id)

	utils.Success(c, gin.H{
		"id":     id.String(),
		"status": "deleted",
	})
}

// audioFormFile finds the uploaded audio regardless of which field name
// the client used. Older app builds send "audio" or "file".
func (h *Handler) audioFormFile(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("audio_file")
	if err == nil {
		return file, nil
	}
	if file, err = c.FormFile("audio"); err == nil {
		return file, nil
	}
	return c.FormFile("file")
}

func extAllowed(ext string) bool {
	for _, allowed := range allowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

func paginationParams(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
