package stt

// Result represents the outcome of a speech-to-text transcription.
type Result struct {
	Transcript  string  // The transcribed text, trimmed
	Confidence  float64 // Confidence score (0.0-1.0), 0 if the provider gives none
	Provider    string  // The provider used (e.g. "whisper", "deepgram")
	RawResponse string  // Raw provider response (for debugging/logging)
}
