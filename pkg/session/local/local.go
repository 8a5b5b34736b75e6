// Package local provides an in-process implementation of session.Store.
//
// The session table is guarded by a read/write mutex. Each session log has
// its own mutex held across the read-evict-write of Append, so concurrent
// appends to one session serialize and appends to different sessions do not
// contend.
package local

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/clerk/pkg/session"
)

// Config holds configuration for the local session driver.
type Config struct {
	// MaxTurns overrides session.MaxTurns when positive.
	MaxTurns int
}

type turnLog struct {
	mu        sync.Mutex
	turns     []session.Turn
	createdAt time.Time
	updatedAt time.Time
}

// Driver implements session.Store using in-process data structures.
type Driver struct {
	maxTurns int

	mu       sync.RWMutex
	sessions map[string]*turnLog

	now func() time.Time
}

// NewDriver creates a local session driver.
func NewDriver(config Config) *Driver {
	maxTurns := config.MaxTurns
	if maxTurns <= 0 {
		maxTurns = session.MaxTurns
	}
	return &Driver{
		maxTurns: maxTurns,
		sessions: make(map[string]*turnLog),
		now:      time.Now,
	}
}

// Create allocates a new session with a random uuid.
func (d *Driver) Create() string {
	id := uuid.NewString()
	d.getOrCreate(id)
	return id
}

// Append adds a turn, creating the session when needed.
func (d *Driver) Append(id, userText, botText string) {
	l := d.getOrCreate(id)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := d.now()
	turns := append(l.turns, session.Turn{
		User:      userText,
		Bot:       botText,
		Timestamp: now,
	})
	if over := len(turns) - d.maxTurns; over > 0 {
		// Fresh backing array so evicted turns are released.
		turns = slices.Clone(turns[over:])
	}
	l.turns = turns
	l.updatedAt = now
}

// History returns a copy of the session's turns.
func (d *Driver) History(id string) []session.Turn {
	d.mu.RLock()
	l, ok := d.sessions[id]
	d.mu.RUnlock()
	if !ok {
		return []session.Turn{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]session.Turn, len(l.turns))
	copy(result, l.turns)
	return result
}

// Delete removes the session.
func (d *Driver) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sessions[id]; !ok {
		return session.ErrSessionNotFound
	}
	delete(d.sessions, id)
	return nil
}

// ClearAll drops every session.
func (d *Driver) ClearAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = make(map[string]*turnLog)
}

// Exists reports whether id names an active session.
func (d *Driver) Exists(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.sessions[id]
	return ok
}

// List returns a summary per session, most recently active first.
func (d *Driver) List() []session.Summary {
	d.mu.RLock()
	ids := make([]string, 0, len(d.sessions))
	logs := make([]*turnLog, 0, len(d.sessions))
	for id, l := range d.sessions {
		ids = append(ids, id)
		logs = append(logs, l)
	}
	d.mu.RUnlock()

	summaries := make([]session.Summary, 0, len(ids))
	for i, l := range logs {
		l.mu.Lock()
		summaries = append(summaries, session.Summary{
			ID:           ids[i],
			Turns:        len(l.turns),
			CreatedAt:    l.createdAt,
			LastActivity: l.updatedAt,
		})
		l.mu.Unlock()
	}

	slices.SortFunc(summaries, func(a, b session.Summary) int {
		if c := b.LastActivity.Compare(a.LastActivity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return summaries
}

func (d *Driver) getOrCreate(id string) *turnLog {
	d.mu.RLock()
	l, ok := d.sessions[id]
	d.mu.RUnlock()
	if ok {
		return l
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if l, ok := d.sessions[id]; ok {
		return l
	}
	now := d.now()
	l = &turnLog{
		turns:     make([]session.Turn, 0, d.maxTurns),
		createdAt: now,
		updatedAt: now,
	}
	d.sessions[id] = l
	return l
}
