package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

func TestCredentialRepository_UniqueFields(t *testing.T) {
	repo := NewCredentialRepository()
	ctx := context.Background()

	alice, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "alice@example.com", Active: true})
	if err != nil || alice.ID != 1 {
		t.Fatalf("Create: %v, %+v", err, alice)
	}
	if _, err := repo.Create(ctx, &domain.User{Username: "alice2", Email: "alice@example.com"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "other@example.com"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	if err := repo.Deactivate(ctx, alice.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	got, _ := repo.FindByUsername(ctx, "alice")
	if got.Active {
		t.Fatalf("expected inactive user")
	}
	if _, err := repo.FindByID(ctx, 99); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTaskRepository_ListScopedAndSorted(t *testing.T) {
	repo := NewTaskRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"b", "a", "c"} {
		_ = repo.Create(ctx, &domain.Task{OwnerID: 1, Title: title, Priority: domain.PriorityMedium, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	_ = repo.Create(ctx, &domain.Task{OwnerID: 2, Title: "foreign"})

	items, total, err := repo.List(ctx, ports.TaskFilter{OwnerID: 1, SortBy: ports.SortTitle})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || items[0].Title != "a" || items[2].Title != "c" {
		t.Fatalf("unexpected listing: total=%d first=%s", total, items[0].Title)
	}

	items, _, _ = repo.List(ctx, ports.TaskFilter{OwnerID: 1, SortDesc: true, Page: 1, Limit: 2})
	if len(items) != 2 || items[0].Title != "c" {
		t.Fatalf("expected newest first page of two, got %d items", len(items))
	}

	if _, _, err := repo.List(ctx, ports.TaskFilter{}); err == nil {
		t.Fatalf("expected unscoped filter to be refused")
	}
}

func TestTaskRepository_UndatedTasksSortLast(t *testing.T) {
	repo := NewTaskRepository()
	ctx := context.Background()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)

	_ = repo.Create(ctx, &domain.Task{OwnerID: 1, Title: "undated"})
	_ = repo.Create(ctx, &domain.Task{OwnerID: 1, Title: "late", DueDate: &late})
	_ = repo.Create(ctx, &domain.Task{OwnerID: 1, Title: "early", DueDate: &early})

	for _, tc := range []struct {
		desc bool
		want []string
	}{
		{false, []string{"early", "late", "undated"}},
		{true, []string{"late", "early", "undated"}},
	} {
		items, _, err := repo.List(ctx, ports.TaskFilter{OwnerID: 1, SortBy: ports.SortDueDate, SortDesc: tc.desc})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		for i, want := range tc.want {
			if items[i].Title != want {
				t.Fatalf("desc=%v position %d: expected %q, got %q", tc.desc, i, want, items[i].Title)
			}
		}
	}
}
