package usecase

import (
	"context"

	"github.com/giftgrove/giftgrove/internal/domain"
)

// UserRepository defines the record-store operations the delegation
// subsystem consumes. Put must reject writes against a stale revision
// with domain.ConflictError; Get maps missing ids to
// domain.NotFoundError.
type UserRepository interface {
	Get(ctx context.Context, id string) (domain.User, error)
	Put(ctx context.Context, user domain.User) (domain.User, error)
	BulkPut(ctx context.Context, users []domain.User) error
	ScanAll(ctx context.Context) ([]domain.User, error)
}

// EventPublisher broadcasts registry change events.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ManagerEvent) error
}
