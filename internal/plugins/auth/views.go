package auth

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/canvass/internal/templates/layouts"
	"github.com/keyxmakerx/canvass/internal/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = layouts.MustParsePages(templateFS, "templates/login.html", "templates/register.html")

// LoginData backs the login page.
type LoginData struct {
	Email      string
	RedirectTo string
	Error      string
}

// RegisterData backs the registration page.
type RegisterData struct {
	Email      string
	Name       string
	RedirectTo string
	Errors     validate.Errors
}

// LoginPage renders the sign-in form.
func LoginPage(data LoginData) templ.Component {
	return pages.Page("templates/login", data)
}

// RegisterPage renders the sign-up form.
func RegisterPage(data RegisterData) templ.Component {
	return pages.Page("templates/register", data)
}
