package domain

import "time"

// IssuedToken is a signed token together with the pool entry that makes it
// valid.
type IssuedToken struct {
	Token     string
	ID        string // jti
	Account   string
	Audience  string
	ExpiresAt time.Time
}
