package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// Auth routes are public (no session required) -- the middleware is exported
// separately for other plugins to use on their route groups.
func RegisterRoutes(e *echo.Echo, h *Handler, resolver *IdentityResolver) {
	guest := RedirectIfAuthenticated(resolver, defaultLandingPath)

	e.GET("/", h.LoginForm, guest)
	e.GET("/login", h.LoginForm, guest)
	e.POST("/login", h.Login)
	e.GET("/register", h.RegisterForm, guest)
	e.POST("/register", h.Register)

	e.POST("/logout", h.Logout)
}
