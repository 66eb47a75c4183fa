package ports

import (
	"context"
	"time"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus   // defaults to PENDING
	Priority    domain.TaskPriority // defaults to MEDIUM
	DueDate     *time.Time
	Tags        []string
	Notes       string
}

// UpdateTaskInput carries optional task changes; nil fields are untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
	Tags        []string
	Notes       *string
}

// ListTasksInput carries the caller-controlled list parameters. The owner
// is always taken from the principal.
type ListTasksInput struct {
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	Search   string
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// TaskPage is a page of tasks.
type TaskPage struct {
	Items      []*domain.Task
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

// TaskService defines task use cases. Every operation is scoped to p.
type TaskService interface {
	Create(ctx context.Context, p domain.Principal, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error)
	List(ctx context.Context, p domain.Principal, input ListTasksInput) (*TaskPage, error)
	Overdue(ctx context.Context, p domain.Principal) ([]*domain.Task, error)
	DueToday(ctx context.Context, p domain.Principal) ([]*domain.Task, error)
	Update(ctx context.Context, p domain.Principal, id int64, input UpdateTaskInput) (*domain.Task, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id int64, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, p domain.Principal, id int64) error
}

// TaskStats summarises a principal's tasks.
type TaskStats struct {
	Total      int64
	ByStatus   map[domain.TaskStatus]int64
	ByPriority map[domain.TaskPriority]int64
	Overdue    int64
}

// CompletionRate is the share of completed tasks in percent, 0 when there
// are no tasks.
func (s *TaskStats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.ByStatus[domain.TaskCompleted]) * 100 / float64(s.Total)
}

// AnalyticsService computes owner-scoped task statistics.
type AnalyticsService interface {
	Stats(ctx context.Context, p domain.Principal) (*TaskStats, error)
}
