package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name          string
		text          string
		expectedScore float64
		expectScam    bool
	}{
		{
			name: "verification scam with link, handle and phone saturates to 1.0",
			// 2 strong phrases (blocked today, account will be blocked),
			// 3 keywords (verify, blocked today, upi), link + handle +
			// phone bonuses: 0.36 + 0.15 + 0.25 + 0.25 + 0.10, clipped.
			text:          "Your account will be blocked today! Verify via bit.ly/xyz123 or pay to upi@ybl, call 9876543210",
			expectedScore: 1.0,
			expectScam:    true,
		},
		{
			name:          "benign scheduling message scores zero",
			text:          "Hi, are we meeting at 6pm?",
			expectedScore: 0.0,
			expectScam:    false,
		},
		{
			name: "otp alone stays below the threshold",
			// strong "otp" 0.18 + keyword "otp" 0.05
			text:          "otp",
			expectedScore: 0.23,
			expectScam:    false,
		},
		{
			name: "stacked phrases cross the threshold without artifacts",
			// strong: otp, pin (0.36); keywords: otp, pin, urgent (0.15)
			text:          "share your otp and pin urgently",
			expectedScore: 0.51,
			expectScam:    true,
		},
		{
			name: "strong phrase and keyword bands double-count the same hit",
			// "refund" is in both lists: 0.18 + 0.05
			text:          "refund",
			expectedScore: 0.23,
			expectScam:    false,
		},
		{
			name: "link presence alone is not enough",
			// keyword "click" 0.05 + link bonus 0.25
			text:          "click bit.ly/abc",
			expectedScore: 0.30,
			expectScam:    false,
		},
		{
			name: "link plus phone crosses the threshold",
			// keyword "click" 0.05 + link 0.25 + phone 0.10
			text:          "click bit.ly/abc or call 9876543210",
			expectedScore: 0.40,
			expectScam:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scorer.Score(tt.text)

			assert.InDelta(t, tt.expectedScore, score, 0.001, "score mismatch")
			assert.Equal(t, tt.expectScam, score >= ScamThreshold, "detection flag mismatch")
		})
	}
}

func TestScorer_Deterministic(t *testing.T) {
	scorer := NewScorer()
	text := "URGENT kyc update needed, verify immediately via bit.ly/x1"

	first := scorer.Score(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, scorer.Score(text), "identical text must yield identical confidence")
	}
}

func TestScorer_ClippedAtOne(t *testing.T) {
	scorer := NewScorer()

	// Every strong phrase plus every keyword plus all three artifact
	// bonuses, far above 1.0 before clipping.
	text := "urgent verify immediately otp cvv pin blocked today account will be blocked suspended freeze " +
		"share your upi click the link refund cashback kyc update bank account share details " +
		"https://evil.example/x pay@ybl 9876543210"

	assert.Equal(t, 1.0, scorer.Score(text))
}
