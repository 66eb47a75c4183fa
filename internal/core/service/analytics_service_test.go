package service

import (
	"context"
	"testing"
	"time"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

func TestAnalyticsService_StatsAreOwnerScoped(t *testing.T) {
	repo := newStubTaskRepo()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	repo.put(&domain.Task{ID: 1, OwnerID: 1, Status: domain.TaskCompleted, Priority: domain.PriorityHigh})
	repo.put(&domain.Task{ID: 2, OwnerID: 1, Status: domain.TaskPending, Priority: domain.PriorityLow, DueDate: &past})
	repo.put(&domain.Task{ID: 3, OwnerID: 1, Status: domain.TaskInProgress, Priority: domain.PriorityHigh})
	repo.put(&domain.Task{ID: 4, OwnerID: 1, Status: domain.TaskCompleted, Priority: domain.PriorityMedium, DueDate: &past})
	repo.put(&domain.Task{ID: 5, OwnerID: 2, Status: domain.TaskPending, Priority: domain.PriorityHigh, DueDate: &past})

	svc := NewAnalyticsService(repo)
	svc.now = func() time.Time { return now }

	stats, err := svc.Stats(context.Background(), domain.Principal{SubjectID: 1, Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Total != 4 {
		t.Fatalf("expected 4 tasks, got %d", stats.Total)
	}
	if stats.ByStatus[domain.TaskCompleted] != 2 || stats.ByStatus[domain.TaskCancelled] != 0 {
		t.Fatalf("unexpected status counts: %v", stats.ByStatus)
	}
	if stats.ByPriority[domain.PriorityHigh] != 2 {
		t.Fatalf("unexpected priority counts: %v", stats.ByPriority)
	}
	if stats.Overdue != 1 {
		t.Fatalf("expected 1 overdue task, got %d", stats.Overdue)
	}
	if rate := stats.CompletionRate(); rate != 50 {
		t.Fatalf("expected 50%% completion, got %v", rate)
	}
}

func TestCompletionRate_Empty(t *testing.T) {
	svc := NewAnalyticsService(newStubTaskRepo())
	stats, err := svc.Stats(context.Background(), domain.Principal{SubjectID: 9})
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Total != 0 || stats.CompletionRate() != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
}
