package push

import "errors"

var (
	// ErrNotSubscribed is returned when unsubscribing an unknown or already removed subscription
	ErrNotSubscribed = errors.New("subscription not found")

	// ErrInvalidSubscription is returned for an empty channel, empty event or nil handler
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrNotConnected is returned when a command is sent without a live connection
	ErrNotConnected = errors.New("push channel not connected")
)
