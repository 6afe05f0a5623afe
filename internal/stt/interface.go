package stt

import (
	"context"
	"errors"
)

// minAudioBytes guards against empty or truncated uploads. Anything this
// small cannot contain intelligible speech and is rejected before a
// provider is ever called.
const minAudioBytes = 1000

// ErrNoSpeech is returned when the provider answered normally but found no
// words in the audio. It is the learner's recording that is at fault, not
// the provider, so callers should not retry it.
var ErrNoSpeech = errors.New("no speech detected in audio")

// ErrAudioInvalid is returned when the uploaded bytes fail the minimum-size
// guard before any provider is called. Like ErrNoSpeech it is an upload
// fault: retrying cannot help and it says nothing about provider health.
var ErrAudioInvalid = errors.New("invalid audio")

// Provider is the one capability the assessment flow needs from a speech
// recognizer: given audio bytes, return a transcript or fail.
type Provider interface {
	// Transcribe converts audio to text. The filename is only used as a
	// format hint (its extension), never read from disk.
	Transcribe(ctx context.Context, audio []byte, filename string) (*Result, error)

	// Name returns the provider name (e.g. "whisper", "deepgram").
	Name() string
}
