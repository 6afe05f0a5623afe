package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// WhisperProvider implements STT using the OpenAI Whisper API.
type WhisperProvider struct {
	client   *openai.Client
	language string
	log      *zap.SugaredLogger
}

// NewWhisperProvider creates a Whisper provider. language is an ISO-639-1
// code such as "en"; Whisper auto-detects when it is empty.
func NewWhisperProvider(apiKey, language string, log *zap.SugaredLogger) *WhisperProvider {
	return &WhisperProvider{
		client:   openai.NewClient(apiKey),
		language: language,
		log:      log,
	}
}

// Name returns the provider name.
func (p *WhisperProvider) Name() string {
	return "whisper"
}

// Transcribe sends the audio to the Whisper API and returns the transcript.
func (p *WhisperProvider) Transcribe(ctx context.Context, audio []byte, filename string) (*Result, error) {
	start := time.Now()

	if len(audio) < minAudioBytes {
		return nil, fmt.Errorf("%w: %d bytes is too small, may be empty or corrupted", ErrAudioInvalid, len(audio))
	}

	p.log.Infow("calling whisper api",
		"filename", filename,
		"size_bytes", len(audio),
	)

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
		Language: p.language,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		return nil, ErrNoSpeech
	}

	p.log.Infow("transcription successful",
		"provider", p.Name(),
		"length", len(transcript),
		"duration", time.Since(start),
	)

	return &Result{
		Transcript:  transcript,
		Provider:    p.Name(),
		RawResponse: resp.Text,
	}, nil
}
