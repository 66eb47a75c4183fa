package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

const (
	maxPageSize    = 100
	maxTitleLength = 200
)

var sortKeys = map[string]string{
	"":          ports.SortCreatedAt,
	"createdAt": ports.SortCreatedAt,
	"dueDate":   ports.SortDueDate,
	"priority":  ports.SortPriority,
	"status":    ports.SortStatus,
	"title":     ports.SortTitle,
}

// TaskService implements the task use cases. Lists are always filtered by
// the principal; single-task operations go through the OwnershipGuard.
type TaskService struct {
	tasks    ports.TaskRepository
	users    ports.CredentialRepository
	guard    *OwnershipGuard
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewTaskService(
	tasks ports.TaskRepository,
	users ports.CredentialRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		users:    users,
		guard:    NewOwnershipGuard(tasks, log),
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, p domain.Principal, input ports.CreateTaskInput) (*domain.Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Status == "" {
		input.Status = domain.TaskPending
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if err := validateTaskFields(input.Title, input.Status, input.Priority); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task := &domain.Task{
		OwnerID:     p.SubjectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == domain.TaskCompleted {
		task.CompletedAt = &now
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.log.Info().Int64("task_id", task.ID).Int64("owner_id", task.OwnerID).Msg("task created")
	s.notify(ctx, p, domain.NotifyTaskCreated, task)

	return task, nil
}

func (s *TaskService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error) {
	return s.guard.Task(ctx, p, id)
}

func (s *TaskService) List(ctx context.Context, p domain.Principal, input ports.ListTasksInput) (*ports.TaskPage, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown status "+string(input.Status))
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, domain.NewValidationError("priority", "unknown priority "+string(input.Priority))
	}
	sortBy, ok := sortKeys[input.SortBy]
	if !ok {
		return nil, domain.NewValidationError("sortBy", "cannot sort by "+input.SortBy)
	}

	page, size := input.Page, input.Size
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.tasks.List(ctx, ports.TaskFilter{
		OwnerID:  p.SubjectID,
		Status:   input.Status,
		Priority: input.Priority,
		Search:   strings.TrimSpace(input.Search),
		SortBy:   sortBy,
		SortDesc: input.SortDesc,
		Page:     page,
		Limit:    size,
	})
	if err != nil {
		return nil, err
	}

	return &ports.TaskPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

// Overdue lists the principal's unfinished tasks whose due date has passed.
func (s *TaskService) Overdue(ctx context.Context, p domain.Principal) ([]*domain.Task, error) {
	items, _, err := s.tasks.List(ctx, ports.TaskFilter{
		OwnerID:       p.SubjectID,
		ExcludeStatus: domain.TaskCompleted,
		DueBefore:     s.now().UTC(),
		SortBy:        ports.SortDueDate,
	})
	return items, err
}

// DueToday lists the principal's tasks due during the current UTC day.
func (s *TaskService) DueToday(ctx context.Context, p domain.Principal) ([]*domain.Task, error) {
	start := s.now().UTC().Truncate(24 * time.Hour)
	items, _, err := s.tasks.List(ctx, ports.TaskFilter{
		OwnerID: p.SubjectID,
		DueFrom: start,
		DueTo:   start.Add(24*time.Hour - time.Nanosecond),
		SortBy:  ports.SortDueDate,
	})
	return items, err
}

func (s *TaskService) Update(ctx context.Context, p domain.Principal, id int64, input ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.guard.Task(ctx, p, id)
	if err != nil {
		return nil, err
	}

	previous := task.Status
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	if input.Notes != nil {
		task.Notes = *input.Notes
	}
	if err := validateTaskFields(task.Title, task.Status, task.Priority); err != nil {
		return nil, err
	}

	return s.save(ctx, p, task, previous)
}

func (s *TaskService) UpdateStatus(ctx context.Context, p domain.Principal, id int64, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown status "+string(status))
	}

	task, err := s.guard.Task(ctx, p, id)
	if err != nil {
		return nil, err
	}
	previous := task.Status
	task.Status = status

	return s.save(ctx, p, task, previous)
}

func (s *TaskService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if _, err := s.guard.Task(ctx, p, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("task_id", id).Int64("owner_id", p.SubjectID).Msg("task deleted")
	return nil
}

// save stamps the completion time on a transition into COMPLETED, clears it
// on a transition out, and persists the task.
func (s *TaskService) save(ctx context.Context, p domain.Principal, task *domain.Task, previous domain.TaskStatus) (*domain.Task, error) {
	now := s.now().UTC()
	task.UpdatedAt = now

	completed := task.Status == domain.TaskCompleted && previous != domain.TaskCompleted
	switch {
	case completed:
		task.CompletedAt = &now
	case task.Status != domain.TaskCompleted:
		task.CompletedAt = nil
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	if completed {
		s.notify(ctx, p, domain.NotifyTaskCompleted, task)
	}
	return task, nil
}

func (s *TaskService) notify(ctx context.Context, p domain.Principal, kind domain.NotificationKind, task *domain.Task) {
	user, err := s.users.FindByID(ctx, p.SubjectID)
	if err != nil {
		// best effort: the task change itself already succeeded
		s.log.Warn().Err(err).Int64("task_id", task.ID).Str("kind", string(kind)).Msg("skipping notification")
		return
	}

	subject := "Task created: " + task.Title
	if kind == domain.NotifyTaskCompleted {
		subject = "Task completed: " + task.Title
	}
	s.notifier.Notify(ctx, domain.Notification{
		Kind:        kind,
		RecipientID: user.ID,
		Email:       user.Email,
		Subject:     subject,
		Data: map[string]string{
			"taskId":   strconv.FormatInt(task.ID, 10),
			"title":    task.Title,
			"priority": string(task.Priority),
		},
	})
}

func validateTaskFields(title string, status domain.TaskStatus, priority domain.TaskPriority) error {
	fields := map[string]string{}
	switch {
	case title == "":
		fields["title"] = "title is required"
	case utf8.RuneCountInString(title) > maxTitleLength:
		fields["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if !status.Valid() {
		fields["status"] = "unknown status " + string(status)
	}
	if !priority.Valid() {
		fields["priority"] = "unknown priority " + string(priority)
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
