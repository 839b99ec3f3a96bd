package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/giftgrove/giftgrove/internal/domain"
)

func TestEnsureManagersFieldBackfills(t *testing.T) {
	repo := newMockUserRepo(
		domain.User{ID: "alice", DisplayName: "Alice"},
		domain.User{ID: "bob", DisplayName: "Bob"},
	)
	uc := NewBackfillUsecase(repo, nil)

	if err := uc.EnsureManagersField(context.Background()); err != nil {
		t.Fatalf("backfill failed: %v", err)
	}
	if repo.bulkCalls != 1 {
		t.Fatalf("expected one bulk write got %d", repo.bulkCalls)
	}

	for _, id := range []string{"alice", "bob"} {
		user := repo.users[id]
		if !user.HasManagersField() {
			t.Fatalf("user %s still lacks a managers list", id)
		}
		if len(user.Managers) != 0 || user.IsManaged {
			t.Fatalf("backfilled user %s must be unmanaged: %+v", id, user)
		}
		if user.DisplayName == "" {
			t.Fatalf("unrelated fields must pass through")
		}
	}
}

func TestEnsureManagersFieldIdempotent(t *testing.T) {
	repo := newMockUserRepo(domain.User{ID: "alice"})
	uc := NewBackfillUsecase(repo, nil)

	if err := uc.EnsureManagersField(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := uc.EnsureManagersField(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if repo.bulkCalls != 1 {
		t.Fatalf("second run must not rewrite, got %d bulk writes", repo.bulkCalls)
	}
}

func TestEnsureManagersFieldEmptyStore(t *testing.T) {
	repo := newMockUserRepo()
	uc := NewBackfillUsecase(repo, nil)

	if err := uc.EnsureManagersField(context.Background()); err != nil {
		t.Fatalf("empty store must be a no-op: %v", err)
	}
	if repo.bulkCalls != 0 {
		t.Fatalf("no bulk write expected on an empty store")
	}
}

func TestConvertUserToManaged(t *testing.T) {
	repo := newMockUserRepo(domain.User{ID: "kid", Managers: []domain.ManagerEntry{}})
	signal := &mockSignal{}
	uc := NewBackfillUsecase(repo, signal)

	updated, err := uc.ConvertUserToManaged(context.Background(), "kid", []domain.ManagerEntry{
		{DelegateID: "guardian"},
		{DelegateID: "helper", Level: domain.LevelCollaborator},
	}, "root")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	if len(updated.Managers) != 2 {
		t.Fatalf("expected 2 entries got %d", len(updated.Managers))
	}
	if updated.Managers[0].Level != domain.LevelFull {
		t.Fatalf("unset level must default to full, got %s", updated.Managers[0].Level)
	}
	if updated.Managers[1].Level != domain.LevelCollaborator {
		t.Fatalf("explicit level must be kept, got %s", updated.Managers[1].Level)
	}
	for _, m := range updated.Managers {
		if m.GrantedBy != "root" || m.GrantedAt.IsZero() {
			t.Fatalf("entry must be stamped with converter and time: %+v", m)
		}
	}
	if !updated.IsManaged {
		t.Fatalf("converted user must be managed")
	}
	if len(signal.events) != 1 || signal.events[0].Type != domain.ManagerEventConverted {
		t.Fatalf("expected one converted event got %+v", signal.events)
	}
}

func TestConvertUserToManagedDuplicateInput(t *testing.T) {
	repo := newMockUserRepo(domain.User{ID: "kid", Managers: []domain.ManagerEntry{
		{DelegateID: "old", Level: domain.LevelFull, GrantedBy: "root", GrantedAt: time.Now()},
	}, IsManaged: true})
	uc := NewBackfillUsecase(repo, nil)

	_, err := uc.ConvertUserToManaged(context.Background(), "kid", []domain.ManagerEntry{
		{DelegateID: "guardian"},
		{DelegateID: "guardian", Level: domain.LevelCollaborator},
	}, "root")
	if !errors.Is(err, domain.ErrDuplicateDelegate) {
		t.Fatalf("expected DuplicateDelegate got %v", err)
	}

	stored := repo.users["kid"]
	if len(stored.Managers) != 1 || stored.Managers[0].DelegateID != "old" {
		t.Fatalf("failed convert must leave the record unchanged: %+v", stored)
	}
}

func TestConvertUserToManagedInvalidLevel(t *testing.T) {
	repo := newMockUserRepo(domain.User{ID: "kid"})
	uc := NewBackfillUsecase(repo, nil)

	_, err := uc.ConvertUserToManaged(context.Background(), "kid", []domain.ManagerEntry{
		{DelegateID: "guardian", Level: domain.Level("boss")},
	}, "root")
	if !errors.Is(err, domain.ErrInvalidLevel) {
		t.Fatalf("expected InvalidLevel got %v", err)
	}
}

func TestConvertUserToManagedEmptySeed(t *testing.T) {
	repo := newMockUserRepo(domain.User{ID: "kid", Managers: []domain.ManagerEntry{
		{DelegateID: "old", Level: domain.LevelFull, GrantedBy: "root", GrantedAt: time.Now()},
	}, IsManaged: true})
	uc := NewBackfillUsecase(repo, nil)

	updated, err := uc.ConvertUserToManaged(context.Background(), "kid", nil, "root")
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if len(updated.Managers) != 0 {
		t.Fatalf("empty seed must clear the list")
	}
	if updated.IsManaged {
		t.Fatalf("derived flag must track the emptied list")
	}
}
