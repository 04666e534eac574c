// Package secrets flags text that looks like leaked credentials, so a
// change record cannot be saved with an API key in it unless the author
// explicitly acknowledges the match.
package secrets

import "regexp"

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:api[_-]?key|apikey)\s*[=:]\s*['"]?[\w\-]{16,}['"]?`),
	regexp.MustCompile(`(?i)\b(?:secret|password|passwd|pwd)\s*[=:]\s*['"]?[^\s'"]{8,}['"]?`),
	regexp.MustCompile(`\b[A-Za-z0-9+/]{40,}={0,2}\b`), // long base64
	regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`),      // GitHub personal access token
	regexp.MustCompile(`\bgho_[A-Za-z0-9]{36}\b`),      // GitHub OAuth token
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),         // AWS access key
	regexp.MustCompile(`-----BEGIN (?:RSA |EC )?PRIVATE KEY-----`),
}

func Scan(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// ScanAll reports whether any of the given fields matches a secret pattern.
func ScanAll(fields ...string) bool {
	for _, f := range fields {
		if Scan(f) {
			return true
		}
	}
	return false
}
