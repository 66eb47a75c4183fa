package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tasknexus/tasknexus-api/internal/api/middleware"
	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

type stubTaskService struct {
	ports.TaskService // unimplemented methods panic

	createFn func(ctx context.Context, p domain.Principal, input ports.CreateTaskInput) (*domain.Task, error)
	getFn    func(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error)
	listFn   func(ctx context.Context, p domain.Principal, input ports.ListTasksInput) (*ports.TaskPage, error)
}

func (s *stubTaskService) Create(ctx context.Context, p domain.Principal, input ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, p, input)
}

func (s *stubTaskService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubTaskService) List(ctx context.Context, p domain.Principal, input ports.ListTasksInput) (*ports.TaskPage, error) {
	return s.listFn(ctx, p, input)
}

var alice = domain.Principal{SubjectID: 1, Username: "alice", Role: domain.RoleUser}

func TestTaskHandler_Create(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		createFn: func(_ context.Context, p domain.Principal, input ports.CreateTaskInput) (*domain.Task, error) {
			if p.SubjectID != alice.SubjectID {
				t.Fatalf("unexpected principal: %+v", p)
			}
			if input.Title != "write docs" || input.Priority != domain.PriorityHigh || input.DueDate == nil {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Task{ID: 42, OwnerID: p.SubjectID, Title: input.Title, Status: domain.TaskPending, Priority: input.Priority}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := jsonContext(e, http.MethodPost, "/tasks",
		`{"title":"write docs","priority":"HIGH","dueDate":"2026-03-11T09:00:00Z"}`)
	middleware.SetPrincipal(c, alice)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["id"] != float64(42) || data["userId"] != float64(1) {
		t.Fatalf("unexpected task payload: %+v", data)
	}
}

func TestTaskHandler_Create_InvalidPriority(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	c, _ := jsonContext(e, http.MethodPost, "/tasks", `{"title":"x","priority":"URGENT"}`)
	middleware.SetPrincipal(c, alice)

	var verr *domain.ValidationError
	if err := handler.Create(c); !errors.As(err, &verr) || verr.Fields["priority"] == "" {
		t.Fatalf("expected priority validation error, got %v", err)
	}
}

func TestTaskHandler_Get_RequiresPrincipal(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	c, _ := jsonContext(e, http.MethodGet, "/tasks/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")

	if err := handler.Get(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTaskHandler_Get_PropagatesOwnershipError(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		getFn: func(_ context.Context, _ domain.Principal, id int64) (*domain.Task, error) {
			if id != 42 {
				t.Fatalf("unexpected id %d", id)
			}
			return nil, domain.ErrNotOwner
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := jsonContext(e, http.MethodGet, "/tasks/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	middleware.SetPrincipal(c, alice)

	if err := handler.Get(c); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestTaskHandler_Get_BadID(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	c, _ := jsonContext(e, http.MethodGet, "/tasks/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	middleware.SetPrincipal(c, alice)

	if err := handler.Get(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestTaskHandler_List_QueryParams(t *testing.T) {
	e := newTestEcho()
	due := time.Now().Add(-time.Hour)
	stub := &stubTaskService{
		listFn: func(_ context.Context, _ domain.Principal, input ports.ListTasksInput) (*ports.TaskPage, error) {
			if input.Page != 2 || input.Size != 5 || input.SortBy != "dueDate" || input.SortDesc {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.TaskPage{
				Items: []*domain.Task{{ID: 1, OwnerID: 1, Title: "late", Status: domain.TaskPending, DueDate: &due}},
				Total: 6, Page: 2, Size: 5, TotalPages: 2,
			}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := jsonContext(e, http.MethodGet, "/tasks?page=2&size=5&sortBy=dueDate&sortDir=asc", "")
	middleware.SetPrincipal(c, alice)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data, _ := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["totalElements"] != float64(6) || data["totalPages"] != float64(2) {
		t.Fatalf("unexpected page payload: %+v", data)
	}
	items, _ := data["content"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["isOverdue"] != true {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestTaskHandler_List_BadQuery(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	for _, target := range []string{"/tasks?page=two", "/tasks?sortDir=sideways"} {
		c, _ := jsonContext(e, http.MethodGet, target, "")
		middleware.SetPrincipal(c, alice)
		if err := handler.List(c); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", target, err)
		}
	}
}

func TestTaskHandler_Search_RequiresQuery(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	c, _ := jsonContext(e, http.MethodGet, "/tasks/search?query=%20", "")
	middleware.SetPrincipal(c, alice)
	if err := handler.Search(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
