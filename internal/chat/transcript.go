package chat

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrBusy is returned by Begin while an earlier bot entry is still pending.
	ErrBusy = errors.New("transcript: a reply is still pending")
	// ErrNotPending is returned when resolving an entry that is not pending.
	ErrNotPending = errors.New("transcript: entry is not pending")
	// ErrInvalidState is returned when resolving to a non-terminal state.
	ErrInvalidState = errors.New("transcript: target state is not terminal")
	// ErrOutOfRange is returned for an index outside the transcript.
	ErrOutOfRange = errors.New("transcript: index out of range")
)

// Transcript is an ordered, append-only record of chat entries. At most one
// entry is pending at any time. It is safe for concurrent use.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
	pending int // index of the pending entry, -1 when none
}

func NewTranscript() *Transcript {
	return &Transcript{pending: -1}
}

// Begin appends a final user entry with the given text followed by a pending
// bot entry, and returns their indexes. Nothing is appended if a bot entry is
// still pending.
func (t *Transcript) Begin(text string) (int, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending >= 0 {
		return -1, -1, ErrBusy
	}
	userIdx := t.appendLocked(Entry{Role: RoleUser, State: StateFinal, Text: text})
	botIdx := t.appendLocked(Entry{Role: RoleBot, State: StatePending})
	t.pending = botIdx
	return userIdx, botIdx, nil
}

func (t *Transcript) appendLocked(e Entry) int {
	e.ID = uuid.NewString()
	t.entries = append(t.entries, e)
	return len(t.entries) - 1
}

// Resolve moves the pending entry at idx to a terminal state and returns the
// updated entry.
func (t *Transcript) Resolve(idx int, state State, text string) (Entry, error) {
	if !state.Terminal() {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidState, state)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.entries) {
		return Entry{}, fmt.Errorf("%w: %d", ErrOutOfRange, idx)
	}
	e := t.entries[idx]
	if e.State != StatePending {
		return Entry{}, fmt.Errorf("%w: entry %d is %s", ErrNotPending, idx, e.State)
	}
	e.State = state
	e.Text = text
	t.entries[idx] = e
	if t.pending == idx {
		t.pending = -1
	}
	return e, nil
}

// At returns the entry at idx.
func (t *Transcript) At(idx int) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if idx < 0 || idx >= len(t.entries) {
		return Entry{}, false
	}
	return t.entries[idx], true
}

// Entries returns a copy of all entries in display order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Pending reports whether a bot entry is awaiting resolution.
func (t *Transcript) Pending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending >= 0
}
