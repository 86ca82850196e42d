package domain

import (
	"sort"
	"time"
)

// Session represents one conversation with a suspected scammer.
//
// Sessions are process-local and in-memory: they live for the lifetime of
// the process with no eviction. That is a deliberate simplification — in a
// long-running deployment the registry grows without bound and would need a
// TTL or an external store (Redis) once multiple workers are involved.
type Session struct {
	ID           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int

	// Finalized is a one-way latch: it transitions false -> true at most
	// once, when enough artifact categories have been collected, and never
	// reverts — not even when report delivery fails.
	Finalized bool

	// Notes is append-only free text recording agent observations and
	// delivery failures.
	Notes string

	Evidence Evidence
}

// NewSession creates an empty session for the given conversation id.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Evidence:  NewEvidence(),
	}
}

// AppendNote adds a note fragment to the session, space-separated.
func (s *Session) AppendNote(note string) {
	if s.Notes == "" {
		s.Notes = note
		return
	}
	s.Notes = s.Notes + " " + note
}

// StringSet is a deduplicating, order-insensitive collection of strings.
type StringSet map[string]struct{}

// Add inserts value into the set.
func (s StringSet) Add(value string) {
	s[value] = struct{}{}
}

// Contains reports whether value is in the set.
func (s StringSet) Contains(value string) bool {
	_, ok := s[value]
	return ok
}

// Clone returns an independent copy of the set.
func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Union adds every element of other into the set.
func (s StringSet) Union(other StringSet) {
	for v := range other {
		s[v] = struct{}{}
	}
}

// Sorted returns the set's elements as a sorted slice. Never nil, so JSON
// encoding yields [] rather than null for empty categories.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Evidence holds the five artifact categories accumulated for a session.
//
// Each category is a set that only grows: once a string is recorded for a
// session it is never removed. Categories are not deduplicated against each
// other — a 10-digit phone-shaped token legitimately appears in both
// PhoneNumbers and AccountNumbers.
type Evidence struct {
	Links          StringSet
	PaymentHandles StringSet
	PhoneNumbers   StringSet
	AccountNumbers StringSet
	Keywords       StringSet
}

// NewEvidence creates an Evidence value with all categories empty.
func NewEvidence() Evidence {
	return Evidence{
		Links:          make(StringSet),
		PaymentHandles: make(StringSet),
		PhoneNumbers:   make(StringSet),
		AccountNumbers: make(StringSet),
		Keywords:       make(StringSet),
	}
}

// Clone returns a deep copy, so per-message computation never aliases the
// session's own sets.
func (e Evidence) Clone() Evidence {
	return Evidence{
		Links:          e.Links.Clone(),
		PaymentHandles: e.PaymentHandles.Clone(),
		PhoneNumbers:   e.PhoneNumbers.Clone(),
		AccountNumbers: e.AccountNumbers.Clone(),
		Keywords:       e.Keywords.Clone(),
	}
}

// Merge unions other into e. Merging is additive only; nothing is replaced
// or removed, which keeps each category monotonically non-decreasing.
func (e Evidence) Merge(other Evidence) {
	e.Links.Union(other.Links)
	e.PaymentHandles.Union(other.PaymentHandles)
	e.PhoneNumbers.Union(other.PhoneNumbers)
	e.AccountNumbers.Union(other.AccountNumbers)
	e.Keywords.Union(other.Keywords)
}

// Intelligence is the externally visible snapshot of a session's evidence,
// with each category sorted for deterministic output. Field names follow
// the collector's contract.
type Intelligence struct {
	BankAccounts  []string `json:"bankAccounts"`
	UPIIDs        []string `json:"upiIds"`
	PhishingLinks []string `json:"phishingLinks"`
	PhoneNumbers  []string `json:"phoneNumbers"`
	Keywords      []string `json:"suspiciousKeywords"`
}

// Snapshot converts Evidence into its sorted external form.
func (e Evidence) Snapshot() Intelligence {
	return Intelligence{
		BankAccounts:  e.AccountNumbers.Sorted(),
		UPIIDs:        e.PaymentHandles.Sorted(),
		PhishingLinks: e.Links.Sorted(),
		PhoneNumbers:  e.PhoneNumbers.Sorted(),
		Keywords:      e.Keywords.Sorted(),
	}
}

// HistoryTurn is one prior turn of the conversation, used as generation
// context only — the pipeline never mutates history.
type HistoryTurn struct {
	Sender string
	Text   string
}

// PipelineState is the transient per-message working state. It is seeded
// from the session under the session's lock, carried through the four
// pipeline stages, and merged back in a single step when the pipeline
// completes. It is never persisted.
type PipelineState struct {
	SessionID string
	Text      string
	Sender    string
	History   []HistoryTurn

	// Evidence starts as a deep copy of the session's sets, so the decide
	// stage sees cumulative evidence including this message's extraction
	// without touching the session until merge-back.
	Evidence Evidence

	Confidence     float64
	ScamDetected   bool
	ShouldFinalize bool
	Reply          string
}

// FinalReport is the one-shot payload delivered to the external collector
// when a session finalizes.
type FinalReport struct {
	SessionID         string       `json:"sessionId"`
	ScamDetected      bool         `json:"scamDetected"`
	MessagesExchanged int          `json:"totalMessagesExchanged"`
	Intelligence      Intelligence `json:"extractedIntelligence"`
	AgentNotes        string       `json:"agentNotes"`
}
