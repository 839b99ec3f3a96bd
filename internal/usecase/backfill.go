package usecase

import (
	"context"
	"time"

	"github.com/giftgrove/giftgrove/internal/domain"
)

// BackfillUsecase repairs records that predate the delegation feature
// and bulk-seeds managed status onto individual accounts.
type BackfillUsecase struct {
	repo   UserRepository
	signal EventPublisher
	now    func() time.Time
}

func NewBackfillUsecase(repo UserRepository, signal EventPublisher) *BackfillUsecase {
	return &BackfillUsecase{
		repo:   repo,
		signal: signal,
		now:    time.Now,
	}
}

// EnsureManagersField runs once at startup. If the store's first record
// lacks a managers list entirely, every record is rewritten with an
// empty list and isManaged false in one bulk write. Idempotent: once a
// sampled record carries the field, nothing is touched.
func (uc *BackfillUsecase) EnsureManagersField(ctx context.Context) error {
	users, err := uc.repo.ScanAll(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	if users[0].HasManagersField() {
		return nil
	}

	for i := range users {
		users[i].Managers = []domain.ManagerEntry{}
		users[i].IsManaged = false
	}
	return uc.repo.BulkPut(ctx, users)
}

// ConvertUserToManaged replaces targetID's manager list with the given
// entries in a single write, defaulting unset levels to full. The input
// must not contain duplicate delegate ids.
func (uc *BackfillUsecase) ConvertUserToManaged(ctx context.Context, targetID string, initialManagers []domain.ManagerEntry, convertedBy string) (domain.User, error) {
	seen := map[string]bool{}
	seeded := make([]domain.ManagerEntry, 0, len(initialManagers))
	for _, m := range initialManagers {
		if m.DelegateID == targetID {
			return domain.User{}, domain.DuplicateDelegateError{DelegateID: m.DelegateID}
		}
		if seen[m.DelegateID] {
			return domain.User{}, domain.DuplicateDelegateError{DelegateID: m.DelegateID}
		}
		seen[m.DelegateID] = true

		level := m.Level
		if level == "" {
			level = domain.LevelFull
		}
		if !level.Persistable() {
			return domain.User{}, domain.InvalidLevelError{Level: string(level)}
		}

		seeded = append(seeded, domain.ManagerEntry{
			DelegateID: m.DelegateID,
			Level:      level,
			GrantedBy:  convertedBy,
			GrantedAt:  uc.now(),
		})
	}

	var updated domain.User
	err := retryOnConflict(func() error {
		user, err := uc.repo.Get(ctx, targetID)
		if err != nil {
			return err
		}

		user.Managers = seeded
		// Keep the derived flag honest even for an empty seed list.
		user.IsManaged = len(seeded) > 0

		updated, err = uc.repo.Put(ctx, user)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	if uc.signal != nil {
		_ = uc.signal.Publish(ctx, domain.ManagerEvent{
			Type:     domain.ManagerEventConverted,
			TargetID: targetID,
			ActorID:  convertedBy,
		})
	}

	return updated, nil
}
