package domain

import "time"

// Level is the trust level of a delegation. Only LevelFull and
// LevelCollaborator are ever persisted; LevelOwner and LevelNone exist
// solely as evaluation results.
type Level string

const (
	LevelFull         Level = "full"
	LevelCollaborator Level = "collaborator"
	LevelOwner        Level = "owner"
	LevelNone         Level = "none"
)

// Rank places levels in the total order used for every
// "at least this trusted" check: owner > full > collaborator > none.
func (l Level) Rank() int {
	switch l {
	case LevelOwner:
		return 3
	case LevelFull:
		return 2
	case LevelCollaborator:
		return 1
	default:
		return 0
	}
}

// Persistable reports whether the level may appear in a stored entry.
func (l Level) Persistable() bool {
	return l == LevelFull || l == LevelCollaborator
}

// ParseLevel converts a wire string into a persistable Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Persistable() {
		return LevelNone, InvalidLevelError{Level: s}
	}
	return l, nil
}

// ManagerEntry is a grant of delegated access on an account.
type ManagerEntry struct {
	DelegateID string     `json:"delegateId"`
	Level      Level      `json:"level"`
	GrantedBy  string     `json:"grantedBy"`
	GrantedAt  time.Time  `json:"grantedAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}
