package stt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWhisperRejectsTinyAudio(t *testing.T) {
	p := NewWhisperProvider("sk-unused", "en", zap.NewNop().Sugar())

	// The size guard fires before any network call is made.
	_, err := p.Transcribe(context.Background(), []byte("tiny"), "clip.m4a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAudioInvalid)
	assert.Contains(t, err.Error(), "too small")
}

func TestWhisperName(t *testing.T) {
	p := NewWhisperProvider("sk-unused", "en", zap.NewNop().Sugar())
	assert.Equal(t, "whisper", p.Name())
}
