package domain

// Manager registry change events, published so the manage dashboard can
// refresh without polling.
const (
	ManagerEventAdded        = "manager.added"
	ManagerEventRemoved      = "manager.removed"
	ManagerEventLevelUpdated = "manager.levelUpdated"
	ManagerEventConverted    = "manager.converted"
)

// ManagerChannel is the pub/sub channel carrying ManagerEvents.
const ManagerChannel = "giftgrove:managers"

// ManagerEvent describes one registry mutation.
type ManagerEvent struct {
	Type       string `json:"type"`
	TargetID   string `json:"targetId"`
	DelegateID string `json:"delegateId,omitempty"`
	Level      Level  `json:"level,omitempty"`
	ActorID    string `json:"actorId,omitempty"`
}
