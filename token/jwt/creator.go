package jwt

import (
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-client/internal/config"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// AccessClaims are the claims the dev server puts in an access token
type AccessClaims struct {
	Email string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

// Creator signs and verifies HS256 access tokens for the dev server
type Creator struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewCreator creates a new JWT creator
func NewCreator(cfg config.DevServerConfig) *Creator {
	return &Creator{
		secret: []byte(cfg.GetSigningSecret()),
		expiry: cfg.GetAccessTokenExpiry(),
		issuer: "session-devserver",
	}
}

// CreateAccessToken creates a signed access token for the user
func (c *Creator) CreateAccessToken(user *users.User) (string, error) {
	now := NowTimeFunc()
	claims := AccessClaims{
		Email: user.Email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.expiry)),
			ID:        uuid.New().String(), // unique even when two tokens are minted in the same second
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// ExpiresIn is the lifetime of tokens minted by this creator
func (c *Creator) ExpiresIn() time.Duration {
	return c.expiry
}

// Verify checks signature and expiry and returns the user ID in the sub claim
func (c *Creator) Verify(rawToken string) (int64, error) {
	claims, err := c.Claims(rawToken)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

// Claims checks signature, issuer and expiry and returns the token's claims
func (c *Creator) Claims(rawToken string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwtlib.ParseWithClaims(rawToken, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwtlib.WithIssuer(c.issuer), jwtlib.WithTimeFunc(NowTimeFunc), jwtlib.WithExpirationRequired())
	if err != nil {
		if clienterrors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, clienterrors.Wrapf(clienterrors.ErrTokenExpired, "verify access token")
		}
		return nil, clienterrors.Wrapf(clienterrors.ErrInvalidToken, "verify access token: %v", err)
	}
	if !token.Valid {
		return nil, clienterrors.ErrInvalidToken
	}
	return claims, nil
}

// UserID parses the sub claim
func (c *AccessClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, clienterrors.Wrapf(clienterrors.ErrInvalidToken, "subject %q", c.Subject)
	}
	return id, nil
}
