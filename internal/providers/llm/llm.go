package llm

import "context"

// Provider generates interviewer replies.
type Provider interface {
	// StreamAnswer streams text chunks. errs yields at most one error after chunks closes.
	StreamAnswer(ctx context.Context, prompt string) (chunks <-chan string, errs <-chan error)
	Close() error
}
