package ai

import (
	"context"
	"errors"

	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/profile"
)

// ErrDisabled is returned by the no-op assistant.
var ErrDisabled = errors.New("ai assistant is disabled")

// Extraction is the result of reading profile attributes from a free-text message.
type Extraction struct {
	Updates    []profile.Update
	Confidence float64
	Raw        string
}

// ExplainRequest carries a deterministic verdict to be rephrased for the user.
type ExplainRequest struct {
	Entry       *catalog.Entry
	Profile     profile.Profile
	Eligible    bool
	Satisfied   []string
	Unsatisfied []string
	Language    string
}

// Assistant is an optional language model collaborator. Callers must treat
// every error as a signal to use the deterministic path.
type Assistant interface {
	Extract(ctx context.Context, message, language string) (*Extraction, error)
	Explain(ctx context.Context, req ExplainRequest) (string, error)
}

// Nop is used when no provider is configured.
type Nop struct{}

func (Nop) Extract(context.Context, string, string) (*Extraction, error) {
	return nil, ErrDisabled
}

func (Nop) Explain(context.Context, ExplainRequest) (string, error) {
	return "", ErrDisabled
}
