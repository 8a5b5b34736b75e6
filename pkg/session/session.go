// Package session provides bounded conversational memory keyed by session id.
//
// A session holds the most recent MaxTurns exchanges between a user and the
// assistant. Sessions are created explicitly with Create or implicitly on the
// first Append, and live until deleted or cleared. The only driver is the
// in-process one in pkg/session/local.
package session

import "time"

// MaxTurns bounds every session log. Older turns are evicted first.
const MaxTurns = 10

// Store handles conversational memory for concurrent callers.
type Store interface {
	// Create allocates a new, empty session and returns its id.
	Create() string

	// Append records one exchange. An unknown id is created on the fly.
	// The log is trimmed from the front to MaxTurns.
	Append(id, userText, botText string)

	// History returns the turns of a session, oldest first. An unknown id
	// yields an empty slice. The caller owns the returned slice.
	History(id string) []Turn

	// Delete removes a session. It returns ErrSessionNotFound when the
	// session does not exist.
	Delete(id string) error

	// ClearAll removes every session.
	ClearAll()

	// Exists reports whether the session is active.
	Exists(id string) bool

	// List summarizes every active session, most recent activity first.
	List() []Summary
}

// Turn is one user query and the assistant's answer.
type Turn struct {
	User      string    `json:"user"`
	Bot       string    `json:"bot"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary describes a session without its turns.
type Summary struct {
	ID           string    `json:"session_id"`
	Turns        int       `json:"turns"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}
