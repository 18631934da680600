package notes

import (
	"embed"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/canvass/internal/plugins/projects"
	"github.com/keyxmakerx/canvass/internal/templates/layouts"
	"github.com/keyxmakerx/canvass/internal/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = layouts.MustParsePages(templateFS,
	"templates/new.html",
	"templates/show.html",
	"templates/panel.html",
)

// FormData backs the note form on the new and detail pages.
type FormData struct {
	Project *projects.Project
	Values  NoteRequest
	Errors  validate.Errors
}

// DetailData backs the note detail page.
type DetailData struct {
	Note      *Note
	Form      FormData
	CanEdit   bool
	CanDelete bool
}

// PanelData backs the notes list on the project page.
type PanelData struct {
	ProjectID string
	UserID    string
	IsOwner   bool
	Query     string
	Notes     []Note
}

// NewNotePage renders the note creation form.
func NewNotePage(data FormData) templ.Component {
	return pages.Page("templates/new", data)
}

// ShowNotePage renders a single note.
func ShowNotePage(data DetailData) templ.Component {
	return pages.Page("templates/show", data)
}

// PanelFragment renders the notes list without the page layout.
func PanelFragment(data PanelData) templ.Component {
	return pages.Partial("templates/panel", "notes_panel", data)
}
