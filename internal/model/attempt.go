package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt records one reading attempt: the sentence the learner was asked
// to read, what the recognizer heard, and how the two compared.
type Attempt struct {
	ID               uuid.UUID  `json:"id"`
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	Target           string     `json:"target"`
	Transcript       string     `json:"transcript"`
	Accuracy         int        `json:"accuracy"`
	Tips             []string   `json:"tips"`
	Provider         string     `json:"provider"`
	Confidence       *float64   `json:"confidence,omitempty"`
	AudioPath        *string    `json:"audio_path,omitempty"`
	AudioSizeBytes   *int64     `json:"audio_size_bytes,omitempty"`
	ProcessingTimeMs *int       `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
