package gshserver

import "errors"

// ErrProtocolViolation covers a message of the wrong kind for the
// current state (e.g. UserInput before handshake completes). Inbound
// occurrences during Running are logged and dropped, not fatal.
var ErrProtocolViolation = errors.New("gshserver: protocol violation")

// ErrService wraps an error surfaced from a user-supplied Service hook.
// Unlike ErrProtocolViolation, this terminates the connection.
var ErrService = errors.New("gshserver: service error")
