package session

import "errors"

// ErrSessionNotFound is returned when deleting a session that does not exist.
var ErrSessionNotFound = errors.New("session not found")
