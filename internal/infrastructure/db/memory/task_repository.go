package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

var errUnscopedFilter = errors.New("memory: task filter without owner")

// TaskRepository implements ports.TaskRepository in memory.
type TaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[int64]domain.Task)}
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	} else if t.ID > r.nextID {
		r.nextID = t.ID
	}
	r.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) FindByID(_ context.Context, id int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *TaskRepository) Update(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepository) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, int64, error) {
	if f.OwnerID == 0 {
		return nil, 0, errUnscopedFilter
	}

	r.mu.RLock()
	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if matches(t, f) {
			task := t
			out = append(out, &task)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		// tasks without a due date sort last in both directions
		if f.SortBy == ports.SortDueDate && (out[i].DueDate == nil) != (out[j].DueDate == nil) {
			return out[j].DueDate == nil
		}
		if f.SortDesc {
			return lessBy(f.SortBy, out[j], out[i])
		}
		return lessBy(f.SortBy, out[i], out[j])
	})

	total := int64(len(out))
	if f.Page > 0 && f.Limit > 0 {
		start := min((f.Page-1)*f.Limit, len(out))
		end := min(start+f.Limit, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

func (r *TaskRepository) CountByStatus(_ context.Context, ownerID int64) (map[domain.TaskStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.TaskStatus]int64)
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (r *TaskRepository) CountByPriority(_ context.Context, ownerID int64) (map[domain.TaskPriority]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.TaskPriority]int64)
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			counts[t.Priority]++
		}
	}
	return counts, nil
}

func matches(t domain.Task, f ports.TaskFilter) bool {
	switch {
	case t.OwnerID != f.OwnerID:
		return false
	case f.Status != "" && t.Status != f.Status:
		return false
	case f.ExcludeStatus != "" && t.Status == f.ExcludeStatus:
		return false
	case f.Priority != "" && t.Priority != f.Priority:
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if !f.DueFrom.IsZero() || !f.DueTo.IsZero() || !f.DueBefore.IsZero() {
		if t.DueDate == nil {
			return false
		}
		due := *t.DueDate
		if (!f.DueFrom.IsZero() && due.Before(f.DueFrom)) ||
			(!f.DueTo.IsZero() && due.After(f.DueTo)) ||
			(!f.DueBefore.IsZero() && !due.Before(f.DueBefore)) {
			return false
		}
	}
	return true
}

var priorityRank = map[domain.TaskPriority]int{
	domain.PriorityLow:    0,
	domain.PriorityMedium: 1,
	domain.PriorityHigh:   2,
}

func lessBy(key string, a, b *domain.Task) bool {
	switch key {
	case ports.SortTitle:
		return a.Title < b.Title
	case ports.SortStatus:
		return a.Status < b.Status
	case ports.SortPriority:
		return priorityRank[a.Priority] < priorityRank[b.Priority]
	case ports.SortDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			return false
		}
		return a.DueDate.Before(*b.DueDate)
	default:
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
