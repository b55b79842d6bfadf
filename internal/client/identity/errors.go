package identity

import "errors"

var (
	// ErrNoSession is returned when no session file exists
	ErrNoSession = errors.New("no session")

	// ErrInvalidToken is returned for a token without a usable viewer id
	ErrInvalidToken = errors.New("invalid session token")
)
