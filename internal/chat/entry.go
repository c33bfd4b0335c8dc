package chat

// Role identifies who authored a transcript entry.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// State is the lifecycle state of a transcript entry. Final and Error are
// terminal; only Pending entries may change.
type State string

const (
	StateFinal   State = "final"
	StatePending State = "pending"
	StateError   State = "error"
)

// Terminal reports whether no further transition is allowed from s.
func (s State) Terminal() bool {
	return s == StateFinal || s == StateError
}

// Entry is one message unit in a transcript.
type Entry struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	State State  `json:"state"`
	Text  string `json:"text"`
}
