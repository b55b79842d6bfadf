package reactions

import "errors"

// ErrInvalidArgument is returned for programmer errors: bad entity id,
// unknown reaction kind, negative count or timestamp.
var ErrInvalidArgument = errors.New("invalid argument")
