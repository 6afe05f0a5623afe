package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DeepgramProvider implements STT using the Deepgram pre-recorded
// listen API.
type DeepgramProvider struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewDeepgramProvider creates a Deepgram provider. baseURL normally points
// at https://api.deepgram.com/v1/listen and is overridable for tests.
func NewDeepgramProvider(apiKey, baseURL, language string, log *zap.SugaredLogger) *DeepgramProvider {
	return &DeepgramProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		language:   language,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		log:        log,
	}
}

// Name returns the provider name.
func (p *DeepgramProvider) Name() string {
	return "deepgram"
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe posts the raw audio bytes to Deepgram and returns the best
// alternative of the first channel.
func (p *DeepgramProvider) Transcribe(ctx context.Context, audio []byte, filename string) (*Result, error) {
	start := time.Now()

	if len(audio) < minAudioBytes {
		return nil, fmt.Errorf("%w: %d bytes is too small, may be empty or corrupted", ErrAudioInvalid, len(audio))
	}

	params := url.Values{}
	params.Set("model", "nova-2")
	params.Set("smart_format", "true")
	if p.language != "" {
		params.Set("language", p.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("create deepgram request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	req.Header.Set("Content-Type", contentTypeFor(filename))

	p.log.Infow("calling deepgram api",
		"filename", filename,
		"size_bytes", len(audio),
	)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read deepgram response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.log.Errorw("deepgram api error", "status", resp.StatusCode, "body", preview(body))
		return nil, fmt.Errorf("deepgram returned status %d: %s", resp.StatusCode, preview(body))
	}

	var parsed deepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse deepgram response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		p.log.Warnw("deepgram returned no alternatives", "body", preview(body))
		return nil, ErrNoSpeech
	}

	alt := parsed.Results.Channels[0].Alternatives[0]
	transcript := strings.TrimSpace(alt.Transcript)
	if transcript == "" {
		return nil, ErrNoSpeech
	}

	p.log.Infow("transcription successful",
		"provider", p.Name(),
		"confidence", alt.Confidence,
		"length", len(transcript),
		"duration", time.Since(start),
	)

	return &Result{
		Transcript:  transcript,
		Confidence:  alt.Confidence,
		Provider:    p.Name(),
		RawResponse: string(body),
	}, nil
}

// contentTypeFor maps an audio filename to the MIME type Deepgram expects.
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a", ".aac":
		return "audio/aac"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}

// preview truncates a response body for log lines and error messages.
func preview(body []byte) string {
	const limit = 500
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
