package stt

import "context"

// MockProvider returns a canned transcript. It backs local development
// without recognizer credentials and keeps handler tests deterministic.
type MockProvider struct {
	Transcript string
	Confidence float64
	Err        error
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// Transcribe returns the configured transcript or error without looking
// at the audio.
func (p *MockProvider) Transcribe(ctx context.Context, audio []byte, filename string) (*Result, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return &Result{
		Transcript: p.Transcript,
		Confidence: p.Confidence,
		Provider:   p.Name(),
	}, nil
}
