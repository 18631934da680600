package auth

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/metrics"
	"github.com/keyxmakerx/canvass/internal/middleware"
)

// Context keys for storing identity data in Echo context. Other plugins
// use these keys (via the exported getter functions below) to access
// the authenticated user's information.
const (
	contextKeyPrincipal = "auth_principal"
	contextKeyUserID    = "auth_user_id"
)

// RequireAuth returns middleware that resolves the Principal for every
// request and stores it in the Echo context. Requests without a valid
// session get an Unauthenticated error that the HTTP error handler turns
// into a redirect to the login page. A session naming a deleted user has
// its cookie cleared.
func RequireAuth(resolver *IdentityResolver, rec metrics.Recorder) echo.MiddlewareFunc {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			principal, err := resolver.RequireUser(req.Context(), req)
			if err != nil {
				if apperror.Is(err, apperror.TypeStaleSession) {
					slog.Info("clearing stale session", slog.String("path", req.URL.Path))
					rec.RecordAuthEvent(metrics.EventStaleSession)
					c.SetCookie(resolver.Sessions().Destroy())
				}
				return err
			}

			SetPrincipal(c, principal)
			return next(c)
		}
	}
}

// RedirectIfAuthenticated sends signed-in visitors away from the login and
// register pages. The user is resolved, not just the signature, so a stale
// session has its cookie cleared and sees the page instead of bouncing.
func RedirectIfAuthenticated(resolver *IdentityResolver, to string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			principal, err := resolver.CurrentUser(req.Context(), req)
			if err != nil {
				if !apperror.Is(err, apperror.TypeStaleSession) {
					return err
				}
				slog.Info("clearing stale session", slog.String("path", req.URL.Path))
				c.SetCookie(resolver.Sessions().Destroy())
				return next(c)
			}
			if principal != nil {
				return middleware.Redirect(c, to)
			}
			return next(c)
		}
	}
}

// --- Exported getters for other plugins ---

// SetPrincipal stores p as the request's identity.
func SetPrincipal(c echo.Context, p *Principal) {
	c.Set(contextKeyPrincipal, p)
	c.Set(contextKeyUserID, p.ID)
}

// GetPrincipal retrieves the authenticated Principal from the Echo context.
// Returns nil if the request is not authenticated (middleware not applied).
func GetPrincipal(c echo.Context) *Principal {
	p, ok := c.Get(contextKeyPrincipal).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
