package eventstream

import "errors"

// ErrNilResultEvent indicates a nil result event payload was provided to a
// publisher.
var ErrNilResultEvent = errors.New("nil result event")
