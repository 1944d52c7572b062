package llm

import (
	"context"
)

// Provider sends one prompt to a generative-language service and returns
// the raw answer text. Implementations make exactly one network call per
// Complete invocation; retry policy lives in the Gateway.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}
