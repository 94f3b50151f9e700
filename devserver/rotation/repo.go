package rotation

import (
	"time"
)

// StoredRefreshToken is the server-side record behind an opaque refresh token.
// The client only ever sees Token.
type StoredRefreshToken struct {
	Token  string
	UserID int64
	Iat    time.Time
}

// Repo stores refresh token records keyed by the token string, with at most one live token per user
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetByUserID(userID int64) (*StoredRefreshToken, error)
	DeleteByUserID(userID int64) error
}
