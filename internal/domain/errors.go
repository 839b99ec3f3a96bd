package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ConflictError represents a write rejected because the record changed
// since it was read. Retryable.
type ConflictError struct {
	Resource string
}

func (e ConflictError) Error() string {
	if e.Resource == "" {
		return "conflict"
	}
	return fmt.Sprintf("%s modified concurrently", e.Resource)
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

// ErrConflict is the sentinel error for concurrent-write rejections.
var ErrConflict = ConflictError{}

// DuplicateDelegateError represents an attempt to add a delegate that
// is already present on the target.
type DuplicateDelegateError struct {
	DelegateID string
}

func (e DuplicateDelegateError) Error() string {
	if e.DelegateID == "" {
		return "delegate already present"
	}
	return fmt.Sprintf("delegate %s already present", e.DelegateID)
}

func (e DuplicateDelegateError) Is(target error) bool {
	_, ok := target.(DuplicateDelegateError)
	if ok {
		return true
	}
	_, ok = target.(*DuplicateDelegateError)
	return ok
}

// ErrDuplicateDelegate is the sentinel for duplicate delegate grants.
var ErrDuplicateDelegate = DuplicateDelegateError{}

// NoManagersError represents a removal or update against a record whose
// manager list is absent or empty.
type NoManagersError struct {
	TargetID string
}

func (e NoManagersError) Error() string {
	if e.TargetID == "" {
		return "user has no managers"
	}
	return fmt.Sprintf("user %s has no managers", e.TargetID)
}

func (e NoManagersError) Is(target error) bool {
	_, ok := target.(NoManagersError)
	if ok {
		return true
	}
	_, ok = target.(*NoManagersError)
	return ok
}

// ErrNoManagers is the sentinel for empty-manager-list failures.
var ErrNoManagers = NoManagersError{}

// ManagerNotFoundError represents an update or removal referencing a
// delegate that has no entry on the target.
type ManagerNotFoundError struct {
	DelegateID string
}

func (e ManagerNotFoundError) Error() string {
	if e.DelegateID == "" {
		return "manager not found"
	}
	return fmt.Sprintf("manager %s not found", e.DelegateID)
}

func (e ManagerNotFoundError) Is(target error) bool {
	_, ok := target.(ManagerNotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*ManagerNotFoundError)
	return ok
}

// ErrManagerNotFound is the sentinel for missing manager entries.
var ErrManagerNotFound = ManagerNotFoundError{}

// InvalidLevelError represents a level that is neither full nor
// collaborator.
type InvalidLevelError struct {
	Level string
}

func (e InvalidLevelError) Error() string {
	if e.Level == "" {
		return "invalid manager level"
	}
	return fmt.Sprintf("invalid manager level %q", e.Level)
}

func (e InvalidLevelError) Is(target error) bool {
	_, ok := target.(InvalidLevelError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidLevelError)
	return ok
}

// ErrInvalidLevel is the sentinel for malformed levels.
var ErrInvalidLevel = InvalidLevelError{}
