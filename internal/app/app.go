// Package app is the application bootstrap and dependency injection root.
// It creates and holds all shared infrastructure (DB pool, metrics registry,
// Echo instance) and wires together all plugins and widgets.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/config"
	"github.com/keyxmakerx/canvass/internal/metrics"
	"github.com/keyxmakerx/canvass/internal/middleware"
	"github.com/keyxmakerx/canvass/internal/templates/pages"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool shared by all plugins. Nil in
	// tests that run on in-memory repositories.
	DB *sql.DB

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// Registry holds every Prometheus collector served on /metrics.
	Registry *prometheus.Registry

	// Metrics records auth, access and HTTP events into Registry.
	Metrics *metrics.Collector
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Configure trusted reverse proxy IPs so c.RealIP() returns the actual
	// client IP instead of the proxy's IP.
	middleware.TrustedProxies(e, middleware.DefaultTrustedProxies)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		Config:   cfg,
		DB:       db,
		Echo:     e,
		Registry: reg,
		Metrics:  metrics.NewCollector(reg),
	}

	// Register global middleware in order of execution.
	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	// Serve static files (CSS).
	e.Static("/static", "static")

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: the request logger is outermost so it records the final
// status of every request, including recovered panics.
func (a *App) setupMiddleware() {
	secure := a.Config.IsProduction()

	// Request logging -- log every request with method, path, status, latency.
	a.Echo.Use(middleware.RequestLogger(a.Metrics))

	// Panic recovery -- turns panics from everything below into a 500.
	a.Echo.Use(middleware.Recovery())

	// Security headers -- CSP, X-Frame-Options, X-Content-Type-Options, etc.
	a.Echo.Use(middleware.SecurityHeaders(secure))

	// CSRF -- double-submit cookie pattern on all state-changing requests.
	a.Echo.Use(middleware.CSRF(secure))

	// Flash -- one-shot banner cookie, HTTPS-only in production.
	a.Echo.Use(middleware.Flash(secure))
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to HTTP responses: authentication failures become a redirect
// to the login page, everything else renders the error page.
//
// For HTMX requests, redirects use HX-Redirect and error pages are
// retargeted to the body so they replace the whole page.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := defaultErrorMessage(code)
	redirect := ""

	// Check if it's our domain error type.
	if appErr, ok := apperror.As(err); ok {
		code = appErr.Code
		message = appErr.Message
		redirect = appErr.Redirect

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	} else {
		// Check for Echo's built-in HTTP errors (e.g., 404 from router).
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			code = echoErr.Code
			message = defaultErrorMessage(code)
		} else {
			// Truly unexpected error -- log it.
			slog.Error("unhandled error",
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
			)
		}
	}

	// Every 401 ends on the login page, remembering where the user was
	// headed when the error carries a redirect.
	if code == http.StatusUnauthorized {
		if redirect == "" {
			redirect = apperror.LoginPath
		}
		if err := middleware.Redirect(c, redirect); err != nil {
			slog.Error("writing redirect", slog.Any("error", err))
		}
		return
	}

	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Retarget", "body")
		c.Response().Header().Set("HX-Reswap", "innerHTML")
	}

	if err := middleware.Render(c, code, pages.ErrorPage(code, message)); err != nil {
		slog.Error("rendering error page", slog.Any("error", err))
	}
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to log in to access this page."
	case http.StatusForbidden:
		return "You don't have permission to access this resource."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusConflict:
		return "This action conflicts with the current state."
	case http.StatusUnprocessableEntity:
		return "The submitted data could not be processed."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong on our end. Please try again."
	}
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Canvass server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}

// Shutdown drains in-flight requests until ctx expires.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}
