package usecase

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/giftgrove/giftgrove/internal/domain"
)

// maxConflictAttempts bounds the read-modify-write retry loop on
// optimistic-concurrency rejections. Retries are immediate; after the
// last attempt the conflict is surfaced to the caller.
const maxConflictAttempts = 3

// RegistryUsecase mutates the manager registry of account records. It
// performs no authorization itself: callers consult the permission
// package before invoking any mutation.
type RegistryUsecase struct {
	repo   UserRepository
	signal EventPublisher
	now    func() time.Time
}

func NewRegistryUsecase(repo UserRepository, signal EventPublisher) *RegistryUsecase {
	return &RegistryUsecase{
		repo:   repo,
		signal: signal,
		now:    time.Now,
	}
}

// AddManager grants delegateID access to targetID's list at the given
// level.
func (uc *RegistryUsecase) AddManager(ctx context.Context, targetID, delegateID string, level domain.Level, grantedBy string) (domain.User, error) {
	if !level.Persistable() {
		return domain.User{}, domain.InvalidLevelError{Level: string(level)}
	}
	// Ownership already grants full access and is never materialized
	// as an entry.
	if delegateID == targetID {
		return domain.User{}, domain.DuplicateDelegateError{DelegateID: delegateID}
	}

	var updated domain.User
	err := retryOnConflict(func() error {
		user, err := uc.repo.Get(ctx, targetID)
		if err != nil {
			return err
		}

		if _, ok := user.FindManager(delegateID); ok {
			return domain.DuplicateDelegateError{DelegateID: delegateID}
		}

		if user.Managers == nil {
			user.Managers = []domain.ManagerEntry{}
		}
		user.Managers = append(user.Managers, domain.ManagerEntry{
			DelegateID: delegateID,
			Level:      level,
			GrantedBy:  grantedBy,
			GrantedAt:  uc.now(),
		})
		user.IsManaged = true

		updated, err = uc.repo.Put(ctx, user)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	uc.publish(ctx, domain.ManagerEvent{
		Type:       domain.ManagerEventAdded,
		TargetID:   targetID,
		DelegateID: delegateID,
		Level:      level,
		ActorID:    grantedBy,
	})

	return updated, nil
}

// RemoveManager deletes delegateID's entry from targetID's record. The
// list contents are untouched if no entry matches; callers wanting
// must-exist semantics check first.
func (uc *RegistryUsecase) RemoveManager(ctx context.Context, targetID, delegateID string) (domain.User, error) {
	var updated domain.User
	err := retryOnConflict(func() error {
		user, err := uc.repo.Get(ctx, targetID)
		if err != nil {
			return err
		}

		if len(user.Managers) == 0 {
			return domain.NoManagersError{TargetID: targetID}
		}

		remaining := make([]domain.ManagerEntry, 0, len(user.Managers))
		for _, m := range user.Managers {
			if m.DelegateID != delegateID {
				remaining = append(remaining, m)
			}
		}
		user.Managers = remaining
		user.IsManaged = len(remaining) > 0

		updated, err = uc.repo.Put(ctx, user)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	uc.publish(ctx, domain.ManagerEvent{
		Type:       domain.ManagerEventRemoved,
		TargetID:   targetID,
		DelegateID: delegateID,
	})

	return updated, nil
}

// UpdateManagerLevel rewrites the level of delegateID's entry on
// targetID and stamps the entry's UpdatedAt. Other entries keep their
// position and contents.
func (uc *RegistryUsecase) UpdateManagerLevel(ctx context.Context, targetID, delegateID string, newLevel domain.Level) (domain.User, error) {
	if !newLevel.Persistable() {
		return domain.User{}, domain.InvalidLevelError{Level: string(newLevel)}
	}

	var updated domain.User
	err := retryOnConflict(func() error {
		user, err := uc.repo.Get(ctx, targetID)
		if err != nil {
			return err
		}

		if len(user.Managers) == 0 {
			return domain.NoManagersError{TargetID: targetID}
		}

		index := -1
		for i, m := range user.Managers {
			if m.DelegateID == delegateID {
				index = i
				break
			}
		}
		if index == -1 {
			return domain.ManagerNotFoundError{DelegateID: delegateID}
		}

		updatedAt := uc.now()
		user.Managers[index].Level = newLevel
		user.Managers[index].UpdatedAt = &updatedAt

		updated, err = uc.repo.Put(ctx, user)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	uc.publish(ctx, domain.ManagerEvent{
		Type:       domain.ManagerEventLevelUpdated,
		TargetID:   targetID,
		DelegateID: delegateID,
		Level:      newLevel,
	})

	return updated, nil
}

// GetManagedUsers returns every record naming delegateID as a manager,
// at any level. Full scan; the view is a recent snapshot, not an
// isolated one.
func (uc *RegistryUsecase) GetManagedUsers(ctx context.Context, delegateID string) ([]domain.User, error) {
	users, err := uc.repo.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	managed := []domain.User{}
	for _, user := range users {
		if _, ok := user.FindManager(delegateID); ok {
			managed = append(managed, user)
		}
	}
	return managed, nil
}

func (uc *RegistryUsecase) publish(ctx context.Context, event domain.ManagerEvent) {
	if uc.signal == nil {
		return
	}
	// Best-effort: a dropped event never fails the mutation.
	_ = uc.signal.Publish(ctx, event)
}

// retryOnConflict runs op, repeating the whole read-modify-write cycle
// on optimistic-concurrency rejections up to maxConflictAttempts.
func retryOnConflict(op func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictAttempts; attempt++ {
		err = op()
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return pkgerrors.Wrap(err, "conflict retries exhausted")
}
