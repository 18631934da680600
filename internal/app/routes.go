package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/canvass/internal/metrics"
	"github.com/keyxmakerx/canvass/internal/middleware"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
	"github.com/keyxmakerx/canvass/internal/plugins/projects"
	"github.com/keyxmakerx/canvass/internal/templates/layouts"
	"github.com/keyxmakerx/canvass/internal/widgets/notes"
)

// Repositories is the storage every plugin is built on. Production uses
// MariaDBRepositories; tests substitute in-memory implementations.
type Repositories struct {
	Users    auth.UserRepository
	Projects projects.ProjectRepository
	Notes    notes.NoteRepository
}

// MariaDBRepositories returns the MariaDB-backed repositories over db.
func MariaDBRepositories(db *sql.DB) Repositories {
	return Repositories{
		Users:    auth.NewUserRepository(db),
		Projects: projects.NewProjectRepository(db),
		Notes:    notes.NewNoteRepository(db),
	}
}

// RegisterRoutes sets up all application routes. It builds each plugin's
// service and handler on repos and delegates to the plugin's route
// registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes(repos Repositories) error {
	e := a.Echo

	// --- Identity ---
	sessions, err := auth.NewSessionStore(auth.SessionConfig{
		Secret: []byte(a.Config.Auth.SessionSecret),
		TTL:    a.Config.Auth.SessionTTL,
		Secure: a.Config.IsProduction(),
	})
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	resolver := auth.NewIdentityResolver(sessions, repos.Users)
	hasher := auth.NewPasswordHasher(a.Config.Auth.BcryptCost)

	// --- Services ---
	authSvc := auth.NewAuthService(repos.Users, hasher, a.Metrics)
	projectSvc := projects.NewProjectService(repos.Projects, projects.NewUserFinderAdapter(repos.Users))
	noteSvc := notes.NewNoteService(repos.Notes)

	// --- Handlers ---
	noteHandler := notes.NewHandler(noteSvc)
	projectHandler := projects.NewHandler(projectSvc, noteHandler.Panel)
	authHandler := auth.NewHandler(authSvc, sessions, a.Metrics)

	middleware.LayoutInjector = layoutInjector

	// --- Public Routes (no auth required) ---

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", a.healthz)

	// Prometheus scrape endpoint.
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(a.Registry)))

	// --- Plugin Routes ---
	auth.RegisterRoutes(e, authHandler, resolver)
	projects.RegisterRoutes(e, projectHandler, projectSvc, resolver, a.Metrics)
	notes.RegisterRoutes(e, noteHandler, projectSvc, resolver, a.Metrics)

	return nil
}

// healthz reports whether the database answers a ping.
func (a *App) healthz(c echo.Context) error {
	if a.DB == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := a.DB.PingContext(ctx); err != nil {
		slog.Error("health check failed", slog.Any("error", err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// contextKeyFlash caches the popped flash so a request that renders more
// than once (page plus embedded fragment) sees the same banner.
const contextKeyFlash = "layout_flash"

// layoutInjector copies identity, CSRF, project and flash data from the
// Echo context into the render context.
func layoutInjector(c echo.Context, ctx context.Context) context.Context {
	if p := auth.GetPrincipal(c); p != nil {
		ctx = layouts.SetIsAuthenticated(ctx, true)
		ctx = layouts.SetUser(ctx, p.ID, p.Name, p.Email)
	}
	ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))

	if pc := projects.GetProjectContext(c); pc != nil {
		ctx = layouts.SetProject(ctx, pc.Project.ID, pc.Project.Name, pc.IsOwner())
	}

	flash, ok := c.Get(contextKeyFlash).([2]string)
	if !ok {
		success, errMsg := middleware.PopFlash(c)
		flash = [2]string{success, errMsg}
		c.Set(contextKeyFlash, flash)
	}
	ctx = layouts.SetFlash(ctx, flash[0], flash[1])

	return layouts.SetActivePath(ctx, c.Request().URL.Path)
}
