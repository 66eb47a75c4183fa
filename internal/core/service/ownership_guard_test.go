package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

func TestEnsureOwner(t *testing.T) {
	task := &domain.Task{ID: 42, OwnerID: 1}

	if err := EnsureOwner(domain.Principal{SubjectID: 1, Role: domain.RoleUser}, task); err != nil {
		t.Fatalf("owner rejected: %v", err)
	}
	if err := EnsureOwner(domain.Principal{SubjectID: 2, Role: domain.RoleUser}, task); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := EnsureOwner(domain.Principal{SubjectID: 2, Role: domain.RoleAdmin}, task); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for ADMIN, got %v", err)
	}

	user := &domain.User{ID: 5}
	if err := EnsureOwner(domain.Principal{SubjectID: 5}, user); err != nil {
		t.Fatalf("user should own itself: %v", err)
	}
}

func TestOwnershipGuard_Task(t *testing.T) {
	repo := newStubTaskRepo()
	repo.put(&domain.Task{ID: 42, OwnerID: 1, Title: "alice's"})
	guard := NewOwnershipGuard(repo, discardLogger)

	alice := domain.Principal{SubjectID: 1, Username: "alice", Role: domain.RoleUser}
	bob := domain.Principal{SubjectID: 2, Username: "bob", Role: domain.RoleUser}

	task, err := guard.Task(context.Background(), alice, 42)
	if err != nil || task.ID != 42 {
		t.Fatalf("expected task 42, got %v, %v", task, err)
	}

	task, err = guard.Task(context.Background(), bob, 42)
	if !errors.Is(err, domain.ErrNotOwner) || task != nil {
		t.Fatalf("expected ErrNotOwner and no task, got %v, %v", task, err)
	}

	if _, err := guard.Task(context.Background(), alice, 43); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
