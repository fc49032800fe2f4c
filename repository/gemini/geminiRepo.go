package geminirepo

import (
	"context"
	"errors"
)

// Repo is the text-generation collaborator behind summaries and AI search.
// It is best-effort and non-deterministic; callers degrade gracefully when
// it fails.
type Repo interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

var ErrDisabled = errors.New("gemini: no api key configured")

// Noop stands in when no API key is configured and in tests.
type Noop struct{}

func (Noop) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return "", ErrDisabled
}
