package request

import "errors"

// ErrInternalServer is the error returned to clients when a handler panics or
// fails unexpectedly.
var ErrInternalServer = errors.New("internal server error")
