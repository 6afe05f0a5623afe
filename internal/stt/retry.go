package stt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/SketchMorph/fitenglish-server/internal/config"
)

// RetryingProvider wraps another provider with bounded retries and a
// circuit breaker. Transient recognizer failures are retried after a
// short delay; sustained failure opens the breaker so uploads fail fast
// instead of stacking 90 second timeouts.
type RetryingProvider struct {
	inner      Provider
	maxRetries int
	delay      time.Duration
	breaker    *gobreaker.CircuitBreaker
	log        *zap.SugaredLogger
}

// WithRetry decorates inner with the retry policy from cfg.
func WithRetry(inner Provider, cfg config.STTConfig, log *zap.SugaredLogger) *RetryingProvider {
	settings := gobreaker.Settings{
		Name:    inner.Name() + "-stt",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Silent or undersized audio is the upload's fault, not the
		// provider's; it must not push the breaker towards open.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoSpeech) || errors.Is(err, ErrAudioInvalid)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("stt circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RetryingProvider{
		inner:      inner,
		maxRetries: cfg.MaxRetries,
		delay:      time.Duration(cfg.RetryDelayMS) * time.Millisecond,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		log:        log,
	}
}

// Name returns the wrapped provider's name.
func (p *RetryingProvider) Name() string {
	return p.inner.Name()
}

// Transcribe calls the wrapped provider, retrying failed attempts up to
// the configured maximum. Context cancellation and an open breaker both
// stop the loop immediately.
func (p *RetryingProvider) Transcribe(ctx context.Context, audio []byte, filename string) (*Result, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.delay):
			}
			p.log.Warnw("retrying transcription",
				"provider", p.inner.Name(),
				"attempt", attempt+1,
				"last_error", lastErr,
			)
		}

		res, err := p.breaker.Execute(func() (interface{}, error) {
			return p.inner.Transcribe(ctx, audio, filename)
		})
		if err == nil {
			return res.(*Result), nil
		}
		lastErr = err

		if errors.Is(err, ErrNoSpeech) || errors.Is(err, ErrAudioInvalid) {
			// Retrying the same broken recording cannot succeed.
			return nil, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("transcription temporarily unavailable: %w", err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("transcription failed after %d attempts: %w", p.maxRetries+1, lastErr)
}
