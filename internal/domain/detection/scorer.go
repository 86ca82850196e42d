package detection

import (
	"math"
	"strings"
)

// ScamThreshold is the confidence at or above which a message is flagged
// as a scam attempt.
const ScamThreshold = 0.35

// Scoring weights. Tuned against a corpus of Indian SMS/WhatsApp fraud
// transcripts; strong phrases dominate, artifact presence adds fixed
// bonuses.
const (
	strongPhraseWeight = 0.18
	keywordWeight      = 0.05
	linkBonus          = 0.25
	paymentHandleBonus = 0.25
	phoneNumberBonus   = 0.10
)

// Scorer computes a scam-confidence value for a single message.
//
// Scoring is pure and deterministic: it depends only on the message text,
// never on history or session state, so identical text always yields the
// identical score. Strong phrases and the broader keyword vocabulary
// overlap, so one hit can contribute to both bands — that double-counting
// is part of the tuned heuristic and must not be "fixed".
type Scorer struct{}

// NewScorer creates a message scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns a confidence in [0, 1]. Additive over phrase, keyword, and
// artifact-presence signals, clipped at 1.0.
func (s *Scorer) Score(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	for _, phrase := range strongPhrases {
		if strings.Contains(lower, phrase) {
			score += strongPhraseWeight
		}
	}

	for _, kw := range SuspiciousKeywords {
		if strings.Contains(lower, kw) {
			score += keywordWeight
		}
	}

	if hasLink(text) {
		score += linkBonus
	}
	if hasPaymentHandle(text) {
		score += paymentHandleBonus
	}
	if hasPhoneNumber(text) {
		score += phoneNumberBonus
	}

	return math.Min(score, 1.0)
}
