package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/api/response"
	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

// AnalyticsHandler serves statistics over the caller's own tasks.
type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(svc ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

type dashboardResponse struct {
	TotalTasks      int64            `json:"totalTasks"`
	PendingTasks    int64            `json:"pendingTasks"`
	InProgressTasks int64            `json:"inProgressTasks"`
	CompletedTasks  int64            `json:"completedTasks"`
	CancelledTasks  int64            `json:"cancelledTasks"`
	OverdueTasks    int64            `json:"overdueTasks"`
	CompletionRate  string           `json:"completionRate"`
	TasksByStatus   map[string]int64 `json:"tasksByStatus"`
	TasksByPriority map[string]int64 `json:"tasksByPriority"`
}

type summaryResponse struct {
	TotalTasks     int64  `json:"totalTasks"`
	CompletedTasks int64  `json:"completedTasks"`
	PendingTasks   int64  `json:"pendingTasks"`
	Productivity   string `json:"productivity"`
}

type performanceResponse struct {
	TotalTasks           int64  `json:"totalTasks"`
	CompletedTasks       int64  `json:"completedTasks"`
	OverdueTasks         int64  `json:"overdueTasks"`
	OnTimeCompletionRate string `json:"onTimeCompletionRate"`
	Efficiency           string `json:"efficiency"`
}

// Dashboard handles GET /analytics/dashboard.
//
// @Summary      Task dashboard for the caller
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=dashboardResponse}
// @Router       /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	stats, err := h.stats(c)
	if err != nil {
		return err
	}

	byStatus := make(map[string]int64, len(stats.ByStatus))
	for k, v := range stats.ByStatus {
		byStatus[string(k)] = v
	}
	byPriority := make(map[string]int64, len(stats.ByPriority))
	for k, v := range stats.ByPriority {
		byPriority[string(k)] = v
	}

	return response.OK(c, "Dashboard stats fetched successfully", dashboardResponse{
		TotalTasks:      stats.Total,
		PendingTasks:    stats.ByStatus[domain.TaskPending],
		InProgressTasks: stats.ByStatus[domain.TaskInProgress],
		CompletedTasks:  stats.ByStatus[domain.TaskCompleted],
		CancelledTasks:  stats.ByStatus[domain.TaskCancelled],
		OverdueTasks:    stats.Overdue,
		CompletionRate:  fmt.Sprintf("%.2f%%", stats.CompletionRate()),
		TasksByStatus:   byStatus,
		TasksByPriority: byPriority,
	})
}

// Summary handles GET /analytics/summary.
//
// @Summary      Task summary for the caller
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=summaryResponse}
// @Router       /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	stats, err := h.stats(c)
	if err != nil {
		return err
	}
	return response.OK(c, "Task summary fetched successfully", summaryResponse{
		TotalTasks:     stats.Total,
		CompletedTasks: stats.ByStatus[domain.TaskCompleted],
		PendingTasks:   stats.ByStatus[domain.TaskPending],
		Productivity:   fmt.Sprintf("%.1f%%", stats.CompletionRate()),
	})
}

// Performance handles GET /analytics/performance.
//
// @Summary      Performance metrics for the caller
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=performanceResponse}
// @Router       /analytics/performance [get]
func (h *AnalyticsHandler) Performance(c echo.Context) error {
	stats, err := h.stats(c)
	if err != nil {
		return err
	}

	onTime := 100.0
	if stats.Total > 0 {
		onTime = float64(stats.Total-stats.Overdue) * 100 / float64(stats.Total)
	}
	efficiency := "Needs Improvement"
	if stats.ByStatus[domain.TaskCompleted] > 0 {
		efficiency = "Good"
	}

	return response.OK(c, "Performance metrics fetched successfully", performanceResponse{
		TotalTasks:           stats.Total,
		CompletedTasks:       stats.ByStatus[domain.TaskCompleted],
		OverdueTasks:         stats.Overdue,
		OnTimeCompletionRate: fmt.Sprintf("%.1f%%", onTime),
		Efficiency:           efficiency,
	})
}

func (h *AnalyticsHandler) stats(c echo.Context) (*ports.TaskStats, error) {
	p, err := currentPrincipal(c)
	if err != nil {
		return nil, err
	}
	return h.service.Stats(c.Request().Context(), p)
}
