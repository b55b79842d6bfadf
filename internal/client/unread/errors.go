package unread

import "errors"

// ErrNoViewer is returned by Start when no viewer id is given
var ErrNoViewer = errors.New("viewer id is required")
