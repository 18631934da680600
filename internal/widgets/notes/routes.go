package notes

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/canvass/internal/metrics"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
	"github.com/keyxmakerx/canvass/internal/plugins/projects"
)

// RegisterRoutes sets up note routes. Every route is scoped to a project
// and requires membership; per-note author and owner rules are enforced by
// the service.
func RegisterRoutes(e *echo.Echo, h *Handler, projectSvc projects.ProjectService, resolver *auth.IdentityResolver, rec metrics.Recorder) {
	pg := e.Group("/projects/:id",
		auth.RequireAuth(resolver, rec),
		projects.RequireProjectAccess(projectSvc, rec),
	)

	pg.GET("/notes/new", h.NewForm)
	pg.POST("/notes", h.Create)
	pg.GET("/notes/:noteId", h.Show)
	pg.POST("/notes/:noteId", h.Update)
	pg.POST("/notes/:noteId/delete", h.Delete)
	pg.GET("/export-csv", h.ExportCSV)
}
