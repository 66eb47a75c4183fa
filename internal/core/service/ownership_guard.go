package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

// EnsureOwner rejects p unless it owns resource. Role is deliberately not
// consulted: ADMIN does not bypass ownership.
func EnsureOwner[T domain.Owned](p domain.Principal, resource T) error {
	if resource.Owner() != p.SubjectID {
		return domain.ErrNotOwner
	}
	return nil
}

// OwnershipGuard loads a single resource and verifies the principal owns it.
type OwnershipGuard struct {
	tasks ports.TaskRepository
	log   zerolog.Logger
}

func NewOwnershipGuard(tasks ports.TaskRepository, log zerolog.Logger) *OwnershipGuard {
	return &OwnershipGuard{tasks: tasks, log: log}
}

// Task returns the task with id if p owns it.
// Missing → domain.ErrTaskNotFound, other owner → domain.ErrNotOwner.
func (g *OwnershipGuard) Task(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error) {
	task, err := g.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := EnsureOwner(p, task); err != nil {
		g.log.Warn().
			Int64("task_id", id).
			Int64("principal_id", p.SubjectID).
			Msg("ownership check failed")
		return nil, err
	}
	return task, nil
}
