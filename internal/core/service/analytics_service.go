package service

import (
	"context"
	"time"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

// AnalyticsService computes statistics over the principal's own tasks only.
type AnalyticsService struct {
	tasks ports.TaskRepository
	now   func() time.Time
}

func NewAnalyticsService(tasks ports.TaskRepository) *AnalyticsService {
	return &AnalyticsService{tasks: tasks, now: time.Now}
}

func (s *AnalyticsService) Stats(ctx context.Context, p domain.Principal) (*ports.TaskStats, error) {
	byStatus, err := s.tasks.CountByStatus(ctx, p.SubjectID)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tasks.CountByPriority(ctx, p.SubjectID)
	if err != nil {
		return nil, err
	}

	// page size 1: only the total is needed
	_, overdue, err := s.tasks.List(ctx, ports.TaskFilter{
		OwnerID:       p.SubjectID,
		ExcludeStatus: domain.TaskCompleted,
		DueBefore:     s.now().UTC(),
		Page:          1,
		Limit:         1,
	})
	if err != nil {
		return nil, err
	}

	stats := &ports.TaskStats{
		ByStatus:   make(map[domain.TaskStatus]int64, len(domain.TaskStatuses)),
		ByPriority: make(map[domain.TaskPriority]int64, 3),
		Overdue:    overdue,
	}
	for _, st := range domain.TaskStatuses {
		stats.ByStatus[st] = byStatus[st]
		stats.Total += byStatus[st]
	}
	for _, pr := range []domain.TaskPriority{domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh} {
		stats.ByPriority[pr] = byPriority[pr]
	}
	return stats, nil
}
