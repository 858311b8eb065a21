package ai

import (
	"context"
	"errors"
)

// ErrDelegateUnavailable marks transport or availability failures of the
// text-generation delegate. Components wrapping this error leave session
// state unmodified so the caller can retry the same turn.
var ErrDelegateUnavailable = errors.New("text generation delegate unavailable")

// TextGenerator is the single capability the interview core needs from a
// language model provider: produce text for a prompt or fail. Output is
// opaque and possibly non-deterministic.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
