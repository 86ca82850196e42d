package detection

import (
	"github.com/karshi-k/agentic-honeypot/internal/domain"
)

// DefaultMinArtifactCategories is the default number of distinct artifact
// categories required before a session is worth finalizing.
const DefaultMinArtifactCategories = 3

// FinalizePolicy decides when a session has accumulated enough evidence to
// trigger the one-shot report to the collector.
//
// Keywords are deliberately excluded from the count: keyword hits are
// cheap and noisy, while links, payment handles, phone numbers, and
// account numbers are actionable artifacts.
type FinalizePolicy struct {
	minCategories int
}

// NewFinalizePolicy creates a policy requiring at least minCategories
// non-empty artifact categories. Values below 1 fall back to the default.
func NewFinalizePolicy(minCategories int) *FinalizePolicy {
	if minCategories < 1 {
		minCategories = DefaultMinArtifactCategories
	}
	return &FinalizePolicy{minCategories: minCategories}
}

// ShouldFinalize evaluates the session's cumulative evidence, after the
// current message's extraction has been incorporated, together with the
// current message's detection flag. It is evaluated fresh on every message;
// the caller only acts on it while the session is not yet finalized.
func (p *FinalizePolicy) ShouldFinalize(ev domain.Evidence, scamDetected bool) bool {
	return scamDetected && CategoryCount(ev) >= p.minCategories
}

// CategoryCount returns how many of the four artifact categories have at
// least one member.
func CategoryCount(ev domain.Evidence) int {
	count := 0
	if len(ev.Links) > 0 {
		count++
	}
	if len(ev.PaymentHandles) > 0 {
		count++
	}
	if len(ev.PhoneNumbers) > 0 {
		count++
	}
	if len(ev.AccountNumbers) > 0 {
		count++
	}
	return count
}
