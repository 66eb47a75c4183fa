package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/tasknexus/tasknexus-api/internal/api/handler"
	"github.com/tasknexus/tasknexus-api/internal/api/middleware"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"

	_ "github.com/tasknexus/tasknexus-api/docs" // swagger docs registration
)

// Dependencies carries everything NewRouter wires into the HTTP layer.
type Dependencies struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Tasks     ports.TaskService
	Analytics ports.AnalyticsService
	Tokens    ports.TokenValidator

	// Policy defaults to middleware.DefaultAccessPolicy.
	Policy *middleware.AccessPolicy
	// Readiness lists the dependencies pinged by GET /health/ready.
	Readiness []handler.DependencyCheck
	// Registerer receives the HTTP request metrics. Nil disables them.
	Registerer prometheus.Registerer

	Errors ErrorOptions
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// Middleware order matters: the request principal is resolved from the
// bearer token before the access policy runs, and both run after routing.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, deps.Errors)

	policy := deps.Policy
	if policy == nil {
		policy = middleware.DefaultAccessPolicy()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))
	if deps.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "tasknexus",
			Subsystem:  "http",
			Registerer: deps.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}
	e.Use(middleware.Authenticate(deps.Tokens, deps.Logger))
	e.Use(middleware.Enforce(policy))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/check-email/:email", authHandler.CheckEmail)
	e.GET("/auth/check-username/:username", authHandler.CheckUsername)

	// --- User routes ---
	userHandler := handler.NewUserHandler(deps.Users)
	users := e.Group("/users")
	users.GET("/me", userHandler.Me)
	users.PUT("/me", userHandler.UpdateMe)
	users.DELETE("/me", userHandler.Deactivate)
	users.PUT("/me/password", userHandler.ChangePassword)
	users.GET("/:id", userHandler.Get)

	// --- Task routes ---
	taskHandler := handler.NewTaskHandler(deps.Tasks)
	tasks := e.Group("/tasks")
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/search", taskHandler.Search)
	tasks.GET("/overdue", taskHandler.Overdue)
	tasks.GET("/due-today", taskHandler.DueToday)
	tasks.GET("/status/:status", taskHandler.ByStatus)
	tasks.GET("/priority/:priority", taskHandler.ByPriority)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Analytics routes ---
	analyticsHandler := handler.NewAnalyticsHandler(deps.Analytics)
	analytics := e.Group("/analytics")
	analytics.GET("/dashboard", analyticsHandler.Dashboard)
	analytics.GET("/summary", analyticsHandler.Summary)
	analytics.GET("/performance", analyticsHandler.Performance)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness...)

	e.GET("/", healthHandler.Welcome)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/docs/*", echoSwagger.WrapHandler)

	return e
}
