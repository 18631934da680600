package projects

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/canvass/internal/templates/layouts"
	"github.com/keyxmakerx/canvass/internal/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = layouts.MustParsePages(templateFS,
	"templates/dashboard.html",
	"templates/new.html",
	"templates/show.html",
)

// DashboardData backs the project list.
type DashboardData struct {
	Projects []Project
	Query    string
}

// NewProjectData backs the project creation form.
type NewProjectData struct {
	Name        string
	Description string
	Selected    []string
	Users       []MemberUser
	Errors      validate.Errors
}

// ShowData backs the project page. Available is only filled for the owner.
type ShowData struct {
	Project    *Project
	IsOwner    bool
	UserID     string
	Query      string
	Available  []MemberUser
	NotesPanel template.HTML
}

// DashboardPage renders the user's projects.
func DashboardPage(data DashboardData) templ.Component {
	return pages.Page("templates/dashboard", data)
}

// NewProjectPage renders the project creation form.
func NewProjectPage(data NewProjectData) templ.Component {
	return pages.Page("templates/new", data)
}

// ShowPage renders a single project.
func ShowPage(data ShowData) templ.Component {
	return pages.Page("templates/show", data)
}
