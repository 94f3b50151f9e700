package users

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// User is the profile cached alongside the session tokens.
type User struct {
	ID       int64  `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Valid reports whether the profile carries enough to identify the account
func (u *User) Valid() bool {
	return u != nil && u.ID != 0 && u.Email != ""
}

// Marshal serializes the profile for the token store
func (u *User) Marshal() (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("[User Marshal] %w", err)
	}
	return string(b), nil
}

// Unmarshal parses a stored profile
func Unmarshal(s string) (*User, error) {
	var u User
	if err := json.Unmarshal([]byte(s), &u); err != nil {
		return nil, fmt.Errorf("[User Unmarshal] %w", err)
	}
	if !u.Valid() {
		return nil, fmt.Errorf("[User Unmarshal] incomplete profile")
	}
	return &u, nil
}

// Account is the server-side record behind a User. Only the dev server keeps these.
type Account struct {
	User
	PasswordHash   string    `json:"-"`
	SocialProvider string    `json:"socialProvider,omitempty"`
	SocialSubject  string    `json:"-"`
	Verified       bool      `json:"verified"`
	DateJoined     time.Time `json:"dateJoined"`
	LastLogin      time.Time `json:"lastLogin,omitempty"`
}

// NormalizeEmail lowercases and trims an email for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains letters and at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasLetter bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasLetter {
		return fmt.Errorf("password must contain at least one letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the account's hash
func (a *Account) CheckPassword(password string) bool {
	return a.PasswordHash != "" && CheckPasswordHash(password, a.PasswordHash)
}
