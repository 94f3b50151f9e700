package apiclient

import "strings"

// PublicPaths are endpoints called without a session. A path containing any of them never
// carries a bearer token and a 401 from it is an ordinary authentication failure.
var PublicPaths = []string{
	"/auth/login",
	"/auth/signup",
	"/auth/send-verification",
	"/auth/verify-email",
	"/auth/social-login",
	"/auth/password-reset/verify",
}

// IsPublic reports whether path targets an unauthenticated endpoint
func IsPublic(path string) bool {
	for _, p := range PublicPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
