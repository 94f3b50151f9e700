package sessions

import (
	"github.com/jrsteele09/go-session-client/users"
)

// Status is the coarse state of the session
type Status int

const (
	LoggedOut Status = iota
	Loading
	LoggedIn
)

func (s Status) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case Loading:
		return "loading"
	case LoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the authenticated state. AccessToken and RefreshToken are both set
// when Status is LoggedIn and both empty otherwise.
type Session struct {
	Status       Status
	AccessToken  string
	RefreshToken string
	User         *users.User
}

func (s Session) LoggedIn() bool {
	return s.Status == LoggedIn
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func loggedOut() Session {
	return Session{Status: LoggedOut}
}
