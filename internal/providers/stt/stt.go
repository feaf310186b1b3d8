package stt

import "context"

// Provider turns one chunk of candidate audio into text.
type Provider interface {
	// Transcribe uses the provider's configured language when language is empty.
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}
