package engage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karshi-k/agentic-honeypot/internal/domain"
	"github.com/karshi-k/agentic-honeypot/internal/ports"
)

// stubGenerator returns a canned completion or error and records the turns
// it was asked to complete.
type stubGenerator struct {
	completion string
	err        error
	calls      int
	lastTurns  []ports.Turn
}

func (g *stubGenerator) Generate(_ context.Context, turns []ports.Turn, _ int) (string, error) {
	g.calls++
	g.lastTurns = turns
	return g.completion, g.err
}

// slowGenerator blocks until the context is cancelled, simulating a
// generation service that exceeds its timeout.
type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, _ []ports.Turn, _ int) (string, error) {
	<-ctx.Done()
	return "", ports.ErrGenerationTimeout
}

func scamState(text string) *domain.PipelineState {
	return &domain.PipelineState{
		SessionID:    "sess-1",
		Text:         text,
		Sender:       "scammer",
		Evidence:     domain.NewEvidence(),
		ScamDetected: true,
	}
}

func TestStrategist_NonScamGetsClarificationWithoutGeneration(t *testing.T) {
	gen := &stubGenerator{completion: "should not be used"}
	strategist := NewStrategist(gen, time.Second)

	state := scamState("Hi, are we meeting at 6pm?")
	state.ScamDetected = false

	reply := strategist.BuildReply(context.Background(), state)

	assert.Equal(t, ClarificationReply, reply)
	assert.Zero(t, gen.calls, "generation must not be invoked for non-scam messages")
}

func TestStrategist_TakesFirstLineOfCompletion(t *testing.T) {
	gen := &stubGenerator{completion: "  Which bank is this about?\nSecond line to drop\n"}
	strategist := NewStrategist(gen, time.Second)

	reply := strategist.BuildReply(context.Background(), scamState("share your otp now"))

	assert.Equal(t, "Which bank is this about?", reply)
	assert.Equal(t, 1, gen.calls)
}

func TestStrategist_TruncatesLongReplies(t *testing.T) {
	gen := &stubGenerator{completion: strings.Repeat("a", 700)}
	strategist := NewStrategist(gen, time.Second)

	reply := strategist.BuildReply(context.Background(), scamState("share your otp now"))

	assert.Len(t, reply, 500)
}

func TestStrategist_FallbackCases(t *testing.T) {
	tests := []struct {
		name string
		gen  ports.Generator
	}{
		{name: "service error", gen: &stubGenerator{err: ports.ErrGenerationService}},
		{name: "timeout", gen: slowGenerator{}},
		{name: "empty completion", gen: &stubGenerator{completion: ""}},
		{name: "whitespace-only completion", gen: &stubGenerator{completion: " \n \n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategist := NewStrategist(tt.gen, 20*time.Millisecond)

			reply := strategist.BuildReply(context.Background(), scamState("verify immediately, share your upi"))

			assert.Equal(t, FallbackReply, reply)
		})
	}
}

func TestStrategist_GuidanceHintSelection(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		seed     func(ev domain.Evidence)
		wantHint string
	}{
		{
			name:     "link already seen",
			text:     "did you open it?",
			seed:     func(ev domain.Evidence) { ev.Links.Add("bit.ly/x") },
			wantHint: "ask to resend / domain name",
		},
		{
			name:     "handle already seen",
			text:     "pay now",
			seed:     func(ev domain.Evidence) { ev.PaymentHandles.Add("upi@ybl") },
			wantHint: "UPI ID / receiver name",
		},
		{
			name:     "upi mentioned in text",
			text:     "send it by UPI today",
			seed:     func(domain.Evidence) {},
			wantHint: "UPI ID / receiver name",
		},
		{
			name:     "otp mentioned in text",
			text:     "tell me the OTP you received",
			seed:     func(domain.Evidence) {},
			wantHint: "Say OTP not received",
		},
		{
			name:     "nothing yet, generic prompt",
			text:     "your account is suspended",
			seed:     func(domain.Evidence) {},
			wantHint: "Ask which bank, exact steps, and link/UPI shown.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{completion: "ok"}
			strategist := NewStrategist(gen, time.Second)

			state := scamState(tt.text)
			tt.seed(state.Evidence)

			strategist.BuildReply(context.Background(), state)

			require.NotEmpty(t, gen.lastTurns)
			last := gen.lastTurns[len(gen.lastTurns)-1]
			assert.Equal(t, "user", last.Role)
			assert.Contains(t, last.Content, tt.wantHint)
			assert.Contains(t, last.Content, tt.text, "latest message must be part of the prompt")
		})
	}
}

func TestStrategist_TurnsCarryPersonaAndHistory(t *testing.T) {
	gen := &stubGenerator{completion: "ok"}
	strategist := NewStrategist(gen, time.Second)

	state := scamState("last message, share your upi")
	state.History = []domain.HistoryTurn{
		{Sender: "scammer", Text: "hello sir"},
		{Sender: "decoy", Text: "who is this?"},
	}

	strategist.BuildReply(context.Background(), state)

	require.Len(t, gen.lastTurns, 4)
	assert.Equal(t, "system", gen.lastTurns[0].Role)
	assert.Contains(t, gen.lastTurns[0].Content, "Never share OTP, PIN, CVV")
	assert.Equal(t, ports.Turn{Role: "user", Content: "hello sir"}, gen.lastTurns[1])
	assert.Equal(t, ports.Turn{Role: "assistant", Content: "who is this?"}, gen.lastTurns[2])
	assert.Equal(t, "user", gen.lastTurns[3].Role)
}
