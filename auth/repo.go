package auth

import "time"

// Verification tracks an email address through the send-code / verify flow
type Verification struct {
	Email    string
	Code     string
	Expires  time.Time
	Verified bool
}

// VerificationRepo stores verification state keyed by normalized email
type VerificationRepo interface {
	Upsert(v *Verification) error
	Get(email string) (*Verification, error)
	Delete(email string) error
}
