package domain

// User represents an account record without persistence concerns.
// Fields outside the delegation feature (display name, groups) are
// carried through mutations untouched.
type User struct {
	ID          string         `json:"id"`
	Admin       bool           `json:"admin"`
	DisplayName string         `json:"displayName"`
	Groups      []string       `json:"groups,omitempty"`
	Managers    []ManagerEntry `json:"managers"`
	IsManaged   bool           `json:"isManaged"`

	// Revision is the store's concurrency token. Opaque to this
	// package; the repository bumps it on every successful write.
	Revision int64 `json:"-"`
}

// HasManagersField reports whether the record carries a managers list
// at all. Records written before the delegation feature have none.
func (u User) HasManagersField() bool {
	return u.Managers != nil
}

// FindManager returns the entry for delegateID, if present.
func (u User) FindManager(delegateID string) (ManagerEntry, bool) {
	for _, m := range u.Managers {
		if m.DelegateID == delegateID {
			return m, true
		}
	}
	return ManagerEntry{}, false
}
