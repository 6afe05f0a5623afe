package stt

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SketchMorph/fitenglish-server/internal/config"
)

// NewProvider builds the STT provider selected by cfg. Credentials are
// validated by config.Load before this is called, so a missing key here
// is a programming error, not a user error.
func NewProvider(cfg config.STTConfig, log *zap.SugaredLogger) (Provider, error) {
	name := strings.ToLower(cfg.Provider)

	switch name {
	case "whisper":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("whisper provider requires an OpenAI API key")
		}
		log.Infow("creating stt provider", "provider", name)
		return NewWhisperProvider(cfg.OpenAIKey, cfg.Language, log), nil
	case "deepgram":
		if cfg.DeepgramKey == "" {
			return nil, fmt.Errorf("deepgram provider requires a Deepgram API key")
		}
		log.Infow("creating stt provider", "provider", name)
		return NewDeepgramProvider(cfg.DeepgramKey, cfg.DeepgramURL, cfg.Language, log), nil
	case "mock":
		log.Warnw("creating mock stt provider, transcripts will be canned")
		return &MockProvider{Transcript: "this is a mock transcript"}, nil
	default:
		return nil, fmt.Errorf("unsupported stt provider: %s (supported: whisper, deepgram, mock)", cfg.Provider)
	}
}
