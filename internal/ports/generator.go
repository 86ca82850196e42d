package ports

import (
	"context"
	"errors"
)

// Generation failure modes. The reply strategist maps both to its fixed
// fallback reply; neither ever reaches the caller.
var (
	// ErrGenerationTimeout indicates the generation service did not answer
	// within its bounded timeout.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationService indicates the generation service answered with
	// an error or a malformed response.
	ErrGenerationService = errors.New("generation service error")
)

// Turn is one chat turn sent to the generation service.
type Turn struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// Generator defines the contract for the external text-generation service
// that produces the deceptive engagement reply.
//
// Implementations must bound the call with their own timeout; callers treat
// any error as a generation failure and substitute a deterministic
// fallback, so the pipeline stays testable without a live service.
type Generator interface {
	// Generate produces a completion for the ordered turns within the
	// given token budget.
	Generate(ctx context.Context, turns []Turn, maxTokens int) (string, error)
}
