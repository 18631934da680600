// Package pages holds the pages that belong to no plugin, such as the
// error page rendered by the HTTP error handler.
package pages

import (
	"embed"
	"net/http"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/canvass/internal/templates/layouts"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = layouts.MustParsePages(templateFS, "templates/error.html")

// ErrorData backs the error page.
type ErrorData struct {
	Code    int
	Title   string
	Message string
}

// ErrorPage renders a full error page for the given status.
func ErrorPage(code int, message string) templ.Component {
	return pages.Page("templates/error", ErrorData{
		Code:    code,
		Title:   http.StatusText(code),
		Message: message,
	})
}
