// Package ai turns free text into RFPs and proposals and ranks proposals,
// using a text-completion backend behind the Generator interface.
package ai

import (
	"context"
	"errors"
)

// Generator produces a completion for a single prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by operations that need a Generator when none is set.
var ErrNotConfigured = errors.New("ai generator is not configured")

const defaultMaxLogLength = 200
