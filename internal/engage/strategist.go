// Package engage builds the honeypot's conversational replies. The goal of
// a reply is never to inform the counterparty — it is bait, written to make
// a scammer volunteer more artifacts (payment handle, phone number, link).
package engage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/karshi-k/agentic-honeypot/internal/domain"
	"github.com/karshi-k/agentic-honeypot/internal/ports"
)

const (
	// ClarificationReply answers messages that did not score as scam. No
	// generation call is made for those.
	ClarificationReply = "Sorry, who is this and which bank/service is this about? I didn't request anything."

	// FallbackReply substitutes for any generation failure: timeout,
	// service error, or an empty completion.
	FallbackReply = "I'm confused, can you resend the link and tell me the exact steps? My app isn't opening properly."

	// persona keeps the decoy cooperative but never forthcoming. The hard
	// rule is that it must not reveal OTP, PIN, CVV, or passwords under
	// any framing.
	persona = "You are a normal person in India replying over SMS/WhatsApp. " +
		"You are anxious and slightly confused, willing to cooperate. " +
		"Goal: ask questions that make the other person reveal details (UPI ID, phone number, link, bank account, steps). " +
		"Never share OTP, PIN, CVV, passwords or any real personal info. " +
		"Keep replies short (1-2 sentences), natural, non-robotic."

	// maxReplyLength caps the reply at a plausible SMS-conversation size.
	maxReplyLength = 500

	// tokenBudget bounds each generation call.
	tokenBudget = 1000
)

// DefaultGenerationTimeout bounds the generation call when no timeout is
// configured.
const DefaultGenerationTimeout = 4 * time.Second

// Strategist produces the engagement reply for one processed message.
type Strategist struct {
	generator ports.Generator
	timeout   time.Duration
}

// NewStrategist creates a reply strategist backed by the given generator.
// A non-positive timeout falls back to DefaultGenerationTimeout.
func NewStrategist(generator ports.Generator, timeout time.Duration) *Strategist {
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Strategist{generator: generator, timeout: timeout}
}

// BuildReply returns the reply text for the current message. Generation
// failures never propagate: the worst case is the deterministic fallback.
func (s *Strategist) BuildReply(ctx context.Context, state *domain.PipelineState) string {
	if !state.ScamDetected {
		return ClarificationReply
	}

	turns := s.buildTurns(state)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := s.generator.Generate(ctx, turns, tokenBudget)
	if err != nil {
		slog.Warn("reply generation failed, using fallback", "session_id", state.SessionID, "error", err)
		return FallbackReply
	}

	reply := firstLine(completion)
	if reply == "" {
		return FallbackReply
	}
	return truncate(reply, maxReplyLength)
}

// buildTurns assembles the generation request: persona, bounded
// conversation history for context, then the latest scammer message with a
// guidance hint chosen from the evidence gathered so far.
func (s *Strategist) buildTurns(state *domain.PipelineState) []ports.Turn {
	turns := make([]ports.Turn, 0, len(state.History)+2)
	turns = append(turns, ports.Turn{Role: "system", Content: persona})

	for _, h := range state.History {
		role := "assistant"
		if h.Sender == state.Sender {
			role = "user"
		}
		turns = append(turns, ports.Turn{Role: role, Content: h.Text})
	}

	turns = append(turns, ports.Turn{
		Role:    "user",
		Content: fmt.Sprintf("Latest scammer message: %s\n\nGuidance: %s", state.Text, guidanceHint(state)),
	})
	return turns
}

// guidanceHint steers the generated questions toward whichever artifact
// the session is still missing the context for.
func guidanceHint(state *domain.PipelineState) string {
	lower := strings.ToLower(state.Text)

	var hints []string
	if len(state.Evidence.Links) > 0 {
		hints = append(hints, "They already sent a link; ask to resend / domain name.")
	}
	if len(state.Evidence.PaymentHandles) > 0 || strings.Contains(lower, "upi") {
		hints = append(hints, "Try to get their UPI ID / receiver name shown on screen.")
	}
	if strings.Contains(lower, "otp") {
		hints = append(hints, "Say OTP not received; ask steps/link instead.")
	}

	if len(hints) == 0 {
		return "Ask which bank, exact steps, and link/UPI shown."
	}
	return strings.Join(hints, " ")
}

// firstLine returns the first non-empty-trimmed line of the completion.
func firstLine(completion string) string {
	trimmed := strings.TrimSpace(completion)
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return strings.TrimSpace(trimmed)
}

// truncate caps text at limit runes.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
