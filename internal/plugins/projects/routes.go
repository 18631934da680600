package projects

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/canvass/internal/metrics"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
)

// RegisterRoutes sets up project and membership routes. Every route needs a
// signed-in user; project-scoped routes go through the Access Gate and
// membership changes are owner only.
func RegisterRoutes(e *echo.Echo, h *Handler, svc ProjectService, resolver *auth.IdentityResolver, rec metrics.Recorder) {
	requireAuth := auth.RequireAuth(resolver, rec)
	e.GET("/dashboard", h.Dashboard, requireAuth)
	e.GET("/projects/new", h.NewForm, requireAuth)
	e.POST("/projects", h.Create, requireAuth)

	pg := e.Group("/projects/:id",
		auth.RequireAuth(resolver, rec),
		RequireProjectAccess(svc, rec),
	)
	pg.GET("", h.Show)

	// Owner-only routes.
	pg.POST("/members", h.AddMembers, RequireOwner(rec))
	pg.POST("/members/:uid/remove", h.RemoveMember, RequireOwner(rec))
}
