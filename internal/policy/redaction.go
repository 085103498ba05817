package policy

import "regexp"

// Redaction rules run in order; cards go before phones so a card number is
// not half-matched as a phone number.
var redactionRules = []struct {
	pattern *regexp.Regexp
	mask    string
}{
	{regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`), "[REDACTED_CARD]"},
	{regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`), "[REDACTED_PHONE]"},
}

// RedactPII masks common high-risk PII patterns. Chat input goes through
// this before it is written to logs; stored documents keep the original
// text.
func RedactPII(input string) (redacted string, changed bool) {
	out := input
	for _, rule := range redactionRules {
		next := rule.pattern.ReplaceAllString(out, rule.mask)
		changed = changed || next != out
		out = next
	}
	return out, changed
}
