package application

import (
	"context"

	"github.com/karshi-k/agentic-honeypot/internal/domain"
	"github.com/karshi-k/agentic-honeypot/internal/domain/detection"
	"github.com/karshi-k/agentic-honeypot/internal/engage"
)

// stage is one step of the per-message pipeline. Stages do not return
// errors: scoring and extraction are total functions, and the reply stage
// swallows generation failures behind its fallback.
type stage struct {
	name string
	run  func(ctx context.Context, state *domain.PipelineState)
}

// Pipeline is the fixed 4-stage sequence executed once per inbound
// message: detect -> extract -> decide -> reply.
//
// The order is a contract, not an implementation detail. Extraction always
// runs, even for messages that did not score as scam, so session evidence
// accumulates uniformly across all traffic; and the decide stage must see
// the current message's extraction merged into the cumulative evidence.
// The sequence is static and non-branching, so a plain ordered slice over
// one shared state record is all the orchestration needed.
type Pipeline struct {
	stages []stage
}

// NewPipeline wires the standard stages from their components.
func NewPipeline(
	scorer *detection.Scorer,
	extractor *detection.Extractor,
	policy *detection.FinalizePolicy,
	strategist *engage.Strategist,
) *Pipeline {
	return &Pipeline{
		stages: []stage{
			{name: "detect", run: func(_ context.Context, state *domain.PipelineState) {
				state.Confidence = scorer.Score(state.Text)
				state.ScamDetected = state.Confidence >= detection.ScamThreshold
			}},
			{name: "extract", run: func(_ context.Context, state *domain.PipelineState) {
				state.Evidence.Merge(extractor.Extract(state.Text))
			}},
			{name: "decide", run: func(_ context.Context, state *domain.PipelineState) {
				state.ShouldFinalize = policy.ShouldFinalize(state.Evidence, state.ScamDetected)
			}},
			{name: "reply", run: func(ctx context.Context, state *domain.PipelineState) {
				state.Reply = strategist.BuildReply(ctx, state)
			}},
		},
	}
}

// Run executes every stage in order against the shared state.
func (p *Pipeline) Run(ctx context.Context, state *domain.PipelineState) {
	for _, st := range p.stages {
		st.run(ctx, state)
	}
}
