package presence

import "errors"

// ErrInvalidInterval is returned by Start for a non-positive interval
var ErrInvalidInterval = errors.New("invalid heartbeat interval")
