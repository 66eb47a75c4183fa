package ports

import (
	"context"
	"time"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// TaskFilter carries the query parameters for listing tasks.
// OwnerID is mandatory: repositories reject a filter without it so no
// cross-owner rows are ever read.
type TaskFilter struct {
	OwnerID       int64
	Status        domain.TaskStatus // optional
	ExcludeStatus domain.TaskStatus // optional
	Priority      domain.TaskPriority
	Search        string    // optional: case-insensitive match on title or description
	DueFrom       time.Time // optional: due_date >= DueFrom
	DueTo         time.Time // optional: due_date <= DueTo
	DueBefore     time.Time // optional: due_date < DueBefore
	SortBy        string    // created_at (default), due_date, priority, status, title
	SortDesc      bool
	Page          int // 1-based; 0 means no pagination
	Limit         int
}

// Sort keys accepted in TaskFilter.SortBy.
const (
	SortCreatedAt = "created_at"
	SortDueDate   = "due_date"
	SortPriority  = "priority"
	SortStatus    = "status"
	SortTitle     = "title"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Create assigns the task ID.
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id int64) error
	// List returns matching tasks and the total count before pagination.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, int64, error)
	CountByStatus(ctx context.Context, ownerID int64) (map[domain.TaskStatus]int64, error)
	CountByPriority(ctx context.Context, ownerID int64) (map[domain.TaskPriority]int64, error)
}
