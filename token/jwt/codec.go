package jwt

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Codec reads the expiry of an access token without verifying its signature.
// The client never holds the signing key; the server remains the authority on validity.
type Codec struct {
	parser *jwtlib.Parser
}

// NewCodec creates a codec for unverified JWT decoding
func NewCodec() *Codec {
	return &Codec{
		parser: jwtlib.NewParser(),
	}
}

// ExpiresAt returns the exp claim of a compact JWT. The second result is false when the token is
// malformed, the payload is not a JSON object, or exp is missing or not numeric.
func (c *Codec) ExpiresAt(rawToken string) (time.Time, bool) {
	if strings.TrimSpace(rawToken) == "" {
		return time.Time{}, false
	}

	token, _, err := c.parser.ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
