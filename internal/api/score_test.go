package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SketchMorph/fitenglish-server/internal/stt"
)

func scoreRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestScoreEndpoint(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{})

	w, env := doRequest(t, r, scoreRequest(`{"target":"The quick brown fox","transcript":"quick brown fox"}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)
	assert.Equal(t, float64(79), env.Data["accuracy"])

	tips := tipsFrom(t, env.Data)
	require.Len(t, tips, 1)
	assert.Contains(t, tips[0], "articles")
}

func TestScoreEndpointEmptyTranscript(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{})

	w, env := doRequest(t, r, scoreRequest(`{"target":"I want to go to the store","transcript":""}`))

	require.Equal(t, http.StatusOK, w.Code, "an empty transcript is scorable, not an error")
	assert.Equal(t, float64(0), env.Data["accuracy"])

	tips := tipsFrom(t, env.Data)
	require.Len(t, tips, 3)
	assert.Contains(t, tips[0], "end")
	assert.Contains(t, tips[1], "articles")
	assert.Contains(t, tips[2], "prepositions")
}

func TestScoreEndpointPerfect(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{})

	w, env := doRequest(t, r, scoreRequest(`{"target":"hello","transcript":"hello"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), env.Data["accuracy"])
	assert.Len(t, tipsFrom(t, env.Data), 1)
}

func TestScoreEndpointRequiresTarget(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{})

	w, env := doRequest(t, r, scoreRequest(`{"transcript":"hello"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "target")
}

func TestScoreEndpointBadJSON(t *testing.T) {
	_, r := newTestHandler(t, &stt.MockProvider{})

	w, _ := doRequest(t, r, scoreRequest(`{"target":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
