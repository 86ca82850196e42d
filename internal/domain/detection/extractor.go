package detection

import (
	"regexp"
	"strings"

	"github.com/karshi-k/agentic-honeypot/internal/domain"
)

var (
	reURL   = regexp.MustCompile(`(?i)https?://[^\s]+`)
	reShort = regexp.MustCompile(`(?i)\b(?:bit\.ly|tinyurl\.com|t\.co|goo\.gl|cutt\.ly|rb\.gy)/[A-Za-z0-9_-]+\b`)

	// Payment handles are local@provider tokens routed over UPI. The
	// provider side is a bare alphanumeric label, which is what separates a
	// handle like upi@ybl from an ordinary email with a dotted domain.
	// Adjacency to word/./- characters is rejected separately, since RE2
	// has no lookaround (see handleBoundaryOK).
	rePaymentHandle = regexp.MustCompile(`[A-Za-z0-9._-]{2,}@[A-Za-z0-9]{2,}`)

	rePhone   = regexp.MustCompile(`\b(?:\+91[-\s]?)?[6-9]\d{9}\b`)
	reAccount = regexp.MustCompile(`\b\d{9,18}\b`)
)

// Extractor pattern-matches raw message text into typed artifact sets.
//
// Extraction is total: every input yields a (possibly empty) result and
// there are no failure modes. Two imprecisions are accepted as known
// behavior rather than fixed:
//   - the payment-handle pattern also matches email-like tokens with
//     undotted domains; the extractor does not tell the two apart.
//   - a 10-digit phone-shaped token also satisfies the 9-18 digit account
//     pattern and is recorded in both categories. No cross-category
//     deduplication is performed.
type Extractor struct{}

// NewExtractor creates an artifact extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns every artifact found in text, one evidence set per
// category. Matched vocabulary keywords are recorded lower-cased verbatim.
func (e *Extractor) Extract(text string) domain.Evidence {
	ev := domain.NewEvidence()

	for _, m := range reURL.FindAllString(text, -1) {
		ev.Links.Add(trimLink(m))
	}
	for _, m := range reShort.FindAllString(text, -1) {
		ev.Links.Add(trimLink(m))
	}

	for _, handle := range findPaymentHandles(text) {
		ev.PaymentHandles.Add(handle)
	}

	for _, m := range rePhone.FindAllString(text, -1) {
		ev.PhoneNumbers.Add(strings.TrimSpace(m))
	}

	for _, m := range reAccount.FindAllString(text, -1) {
		ev.AccountNumbers.Add(m)
	}

	lower := strings.ToLower(text)
	for _, kw := range SuspiciousKeywords {
		if strings.Contains(lower, kw) {
			ev.Keywords.Add(kw)
		}
	}

	return ev
}

// trimLink strips surrounding whitespace and trailing sentence punctuation
// that the URL pattern greedily swallows.
func trimLink(m string) string {
	return strings.TrimRight(strings.TrimSpace(m), ").,;")
}

// findPaymentHandles returns handle tokens whose neighbors pass the
// boundary check. A candidate glued to another word, dot, or dash
// character is part of a longer token (a dotted email domain, a path
// segment) and is skipped.
func findPaymentHandles(text string) []string {
	var handles []string
	for _, loc := range rePaymentHandle.FindAllStringIndex(text, -1) {
		if handleBoundaryOK(text, loc[0], loc[1]) {
			handles = append(handles, text[loc[0]:loc[1]])
		}
	}
	return handles
}

func handleBoundaryOK(text string, start, end int) bool {
	if start > 0 && isHandleChar(text[start-1]) {
		return false
	}
	if end < len(text) && isHandleChar(text[end]) {
		return false
	}
	return true
}

func isHandleChar(c byte) bool {
	return c == '.' || c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// hasLink reports whether any URL or shortened-link token is present.
func hasLink(text string) bool {
	return reURL.MatchString(text) || reShort.MatchString(text)
}

// hasPaymentHandle reports whether any boundary-valid handle is present.
func hasPaymentHandle(text string) bool {
	return len(findPaymentHandles(text)) > 0
}

// hasPhoneNumber reports whether any phone-shaped token is present.
func hasPhoneNumber(text string) bool {
	return rePhone.MatchString(text)
}
