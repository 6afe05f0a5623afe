package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SketchMorph/fitenglish-server/internal/stt"
)

func TestCreateAttempt(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "quick brown fox", Confidence: 0.93})

	w, env := doRequest(t, r, attemptRequest(t, "The quick brown fox", "audio_file", "reading.m4a", fakeAudio(), ""))

	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	require.True(t, env.Success)

	assert.Equal(t, "The quick brown fox", env.Data["target"])
	assert.Equal(t, "quick brown fox", env.Data["transcript"])
	assert.Equal(t, float64(79), env.Data["accuracy"])
	assert.Equal(t, "mock", env.Data["provider"])
	assert.Equal(t, 0.93, env.Data["confidence"])
	assert.NotEmpty(t, env.Data["attempt_id"])

	tips := tipsFrom(t, env.Data)
	require.Len(t, tips, 1)
	assert.Contains(t, tips[0], "articles")
}

func TestCreateAttemptPerfectReading(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), ""))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(100), env.Data["accuracy"])

	tips := tipsFrom(t, env.Data)
	require.Len(t, tips, 1)
	assert.Contains(t, tips[0], "Keep practicing")
}

func TestCreateAttemptRequiresTarget(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, env := doRequest(t, r, attemptRequest(t, "", "audio_file", "reading.m4a", fakeAudio(), ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "target")
}

func TestCreateAttemptRequiresAudio(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, env := doRequest(t, r, attemptRequest(t, "hello", "", "", nil, ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "audio")
}

func TestCreateAttemptAlternateFieldNames(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	for _, field := range []string{"audio", "file"} {
		w, _ := doRequest(t, r, attemptRequest(t, "hello", field, "reading.m4a", fakeAudio(), ""))
		assert.Equal(t, http.StatusCreated, w.Code, "field name %q should be accepted", field)
	}
}

func TestCreateAttemptRejectsUnsupportedFormat(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "notes.txt", fakeAudio(), ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "unsupported audio format")
}

func TestCreateAttemptRejectsOversizedUpload(t *testing.T) {
	h, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})
	h.cfg.MaxUploadMB = 1

	big := make([]byte, 2<<20)
	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", big, ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "1MB limit")
}

func TestCreateAttemptInvalidUserID(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), "not-a-uuid"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "user_id")
}

func TestCreateAttemptProviderFailure(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Err: errors.New("recognizer melted")})

	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), ""))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "transcription failed")
}

func TestCreateAttemptSilentRecording(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Err: stt.ErrNoSpeech})

	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), ""))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "no speech detected")
}

func TestCreateAttemptInvalidAudio(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Err: stt.ErrAudioInvalid})

	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), ""))

	assert.Equal(t, http.StatusBadRequest, w.Code, "a broken upload is the client's fault, not the provider's")
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "empty or corrupted")
}

func TestCreateAttemptProviderFailureHidesDetailInProduction(t *testing.T) {
	h, r := newTestHandler(t, &stt.MockProvider{Err: errors.New("recognizer melted")})
	h.cfg.Environment = "production"

	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), ""))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "transcription failed", env.Error)
	assert.NotContains(t, env.Error, "melted")
}

func TestGetAttempt(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "quick brown fox"})

	w, env := doRequest(t, r, attemptRequest(t, "The quick brown fox", "audio_file", "reading.m4a", fakeAudio(), ""))
	require.Equal(t, http.StatusCreated, w.Code)
	id := env.Data["attempt_id"].(string)

	w2, env2 := doRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/attempts/"+id, nil))

	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, id, env2.Data["id"])
	assert.Equal(t, "The quick brown fox", env2.Data["target"])
	assert.Equal(t, "quick brown fox", env2.Data["transcript"])
	assert.Equal(t, float64(79), env2.Data["accuracy"])
	assert.Len(t, tipsFrom(t, env2.Data), 1)
}

func TestGetAttemptNotFound(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, _ := doRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/attempts/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAttemptBadID(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, _ := doRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/attempts/banana", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAttempts(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	learner := uuid.NewString()
	for i := 0; i < 2; i++ {
		w, _ := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), learner))
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w, _ := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), ""))
	require.Equal(t, http.StatusCreated, w.Code)

	_, env := doRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/attempts", nil))
	assert.Equal(t, float64(3), env.Data["count"], "no filter lists every attempt")

	_, env = doRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/attempts?user_id="+learner, nil))
	assert.Equal(t, float64(2), env.Data["count"])

	_, env = doRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/attempts?limit=1", nil))
	assert.Equal(t, float64(1), env.Data["count"])
	assert.Equal(t, float64(1), env.Data["limit"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attempts", nil)
	req.Header.Set("X-User-ID", learner)
	_, env = doRequest(t, r, req)
	assert.Equal(t, float64(2), env.Data["count"], "X-User-ID header works like the query parameter")
}

func TestListAttemptsInvalidUserID(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, _ := doRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/attempts?user_id=banana", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAttempt(t *testing.T) {
	h, r := newTestHandler(t, &stt.MockProvider{Transcript: "hello"})

	w, env := doRequest(t, r, attemptRequest(t, "hello", "audio_file", "reading.m4a", fakeAudio(), ""))
	require.Equal(t, http.StatusCreated, w.Code)
	id := env.Data["attempt_id"].(string)

	entries, err := os.ReadDir(h.cfg.UploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "upload should land on disk")

	w2, env2 := doRequest(t, r, httptest.NewRequest(http.MethodDelete, "/api/v1/attempts/"+id, nil))
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "deleted", env2.Data["status"])

	entries, err = os.ReadDir(h.cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "audio file goes with the record")

	w3, _ := doRequest(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/attempts/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w3.Code)

	w4, _ := doRequest(t, r, httptest.NewRequest(http.MethodDelete, "/api/v1/attempts/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w4.Code)
}
