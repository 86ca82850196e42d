package detection

// SuspiciousKeywords is the shared fraud vocabulary. The extractor records
// each matching term into the session's keyword evidence, and the scorer
// awards a small bonus per match.
var SuspiciousKeywords = []string{
	"urgent", "verify", "account blocked", "blocked today", "suspended", "freeze",
	"kyc", "otp", "pin", "cvv", "click", "link", "refund", "cashback",
	"upi", "bank account", "share details", "immediately",
}

// strongPhrases are high-signal scam phrases. They overlap with
// SuspiciousKeywords on purpose: a phrase like "otp" scores in both bands,
// which matches how the heuristic was tuned. Do not deduplicate.
var strongPhrases = []string{
	"otp", "cvv", "pin", "verify immediately", "blocked today",
	"account will be blocked", "share your upi", "click the link",
	"refund", "cashback", "kyc update", "suspended",
}
