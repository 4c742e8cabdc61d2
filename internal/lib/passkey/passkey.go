package passkey

import "crypto/subtle"

// Match compares a supplied pass-key against the configured secret in
// constant time, so the comparison does not leak the match prefix length.
func Match(supplied, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(configured)) == 1
}
