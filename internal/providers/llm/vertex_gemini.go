package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

const (
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 30 * time.Second
)

// VertexConfig selects the Gemini model and how each interviewer turn is generated.
type VertexConfig struct {
	ProjectID string
	Location  string
	Model     string
	// SystemInstruction is sent with every request instead of being repeated in prompts.
	SystemInstruction string
	// Timeout bounds one streamed answer, including reading all chunks.
	Timeout time.Duration
}

type VertexGemini struct {
	client  *vertexgenai.Client
	model   *vertexgenai.GenerativeModel
	timeout time.Duration
}

func NewVertexGemini(ctx context.Context, cfg VertexConfig) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("llm: new vertex client: %w", err)
	}
	return &VertexGemini{
		client:  c,
		model:   configureModel(c.GenerativeModel(modelName(cfg.Model)), cfg.SystemInstruction),
		timeout: answerTimeout(cfg.Timeout),
	}, nil
}

func modelName(name string) string {
	if name == "" {
		return defaultModel
	}
	return name
}

func answerTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}

func configureModel(m *vertexgenai.GenerativeModel, instruction string) *vertexgenai.GenerativeModel {
	if instruction != "" {
		m.SystemInstruction = &vertexgenai.Content{
			Role:  "system",
			Parts: []vertexgenai.Part{vertexgenai.Text(instruction)},
		}
	}
	return m
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		ctx, cancel := context.WithTimeout(ctx, v.timeout)
		defer cancel()

		it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
		for {
			resp, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					err = fmt.Errorf("llm: answer exceeded %s: %w", v.timeout, err)
				}
				errs <- err
				return
			}
			for _, t := range textParts(resp) {
				select {
				case out <- t:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return out, errs
}

func textParts(resp *vertexgenai.GenerateContentResponse) []string {
	var parts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
				parts = append(parts, string(t))
			}
		}
	}
	return parts
}
