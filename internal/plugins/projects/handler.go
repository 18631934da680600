package projects

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/middleware"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
	"github.com/keyxmakerx/canvass/internal/templates/layouts"
	"github.com/keyxmakerx/canvass/internal/validate"
)

// NotesPanel builds the notes section of the project page for the given
// search query. Supplied at startup by the notes widget so this package
// does not import it.
type NotesPanel func(ctx context.Context, pc *ProjectContext, userID, query string) (templ.Component, error)

// Handler handles HTTP requests for projects and membership. Handlers are
// thin: bind request, call service, render response.
type Handler struct {
	service ProjectService
	notes   NotesPanel
}

// NewHandler creates a new project handler. notes may be nil, in which
// case the project page has no notes section.
func NewHandler(service ProjectService, notes NotesPanel) *Handler {
	return &Handler{service: service, notes: notes}
}

// --- Projects ---

// Dashboard lists the user's projects (GET /dashboard).
func (h *Handler) Dashboard(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	list, err := h.service.ListForUser(c.Request().Context(), auth.GetUserID(c), query)
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, DashboardPage(DashboardData{
		Projects: list,
		Query:    query,
	}))
}

// NewForm renders the project creation form (GET /projects/new).
func (h *Handler) NewForm(c echo.Context) error {
	users, err := h.service.AvailableUsers(c.Request().Context(), []string{auth.GetUserID(c)})
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, NewProjectPage(NewProjectData{
		Users:  users,
		Errors: validate.Errors{},
	}))
}

// Create processes the project creation form (POST /projects).
func (h *Handler) Create(c echo.Context) error {
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	userID := auth.GetUserID(c)
	errs := validate.Errors{}
	errs.Add("name", validate.ProjectName(req.Name))
	errs.Add("description", validate.Description(req.Description))
	if errs.Any() {
		return h.renderNewErrors(c, req, errs)
	}

	project, err := h.service.Create(c.Request().Context(), userID, CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		MemberIDs:   req.UserIDs,
	})
	if err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Code < http.StatusInternalServerError {
			return h.renderNewErrors(c, req, validate.Errors{"form": appErr.Message})
		}
		return err
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Project created.")
	return middleware.Redirect(c, "/projects/"+project.ID)
}

// Show renders the project page with members and notes (GET /projects/:id).
func (h *Handler) Show(c echo.Context) error {
	pc := GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}
	ctx := c.Request().Context()
	query := strings.TrimSpace(c.QueryParam("q"))

	data := ShowData{
		Project: pc.Project,
		IsOwner: pc.IsOwner(),
		UserID:  auth.GetUserID(c),
		Query:   query,
	}

	if data.IsOwner {
		exclude := append(pc.Project.MemberIDs(), pc.Project.OwnerID)
		users, err := h.service.AvailableUsers(ctx, exclude)
		if err != nil {
			return err
		}
		data.Available = users
	}

	if h.notes != nil {
		panel, err := h.notes(ctx, pc, data.UserID, query)
		if err != nil {
			return err
		}
		html, err := layouts.HTML(middleware.LayoutContext(c), panel)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("rendering notes panel: %w", err))
		}
		data.NotesPanel = html
	}

	return middleware.Render(c, http.StatusOK, ShowPage(data))
}

// --- Membership ---

// AddMembers adds members by user ID and/or email (POST /projects/:id/members).
// Owner only. Outcomes are reported as a flash on the project page.
func (h *Handler) AddMembers(c echo.Context) error {
	pc := GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}
	back := "/projects/" + pc.Project.ID

	var req AddMembersRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	email := strings.TrimSpace(req.Email)
	if len(req.UserIDs) == 0 && email == "" {
		middleware.SetFlash(c, middleware.FlashError, "Select a user or enter an email address.")
		return middleware.Redirect(c, back)
	}

	if email != "" {
		if msg := validate.Email(email); msg != "" {
			middleware.SetFlash(c, middleware.FlashError, msg)
			return middleware.Redirect(c, back)
		}
	}

	ctx := c.Request().Context()
	added, err := h.service.AddMembers(ctx, pc.Project, req.UserIDs)
	if err != nil {
		return flashOrFail(c, partialAddError(err, added), back)
	}

	if email != "" {
		if err := h.service.InviteByEmail(ctx, pc.Project, email); err != nil {
			return flashOrFail(c, partialAddError(err, added), back)
		}
		added++
	}

	if added == 0 {
		middleware.SetFlash(c, middleware.FlashError, "Everyone selected is already a member.")
	} else {
		middleware.SetFlash(c, middleware.FlashSuccess, fmt.Sprintf("Added %d %s.", added, layouts.Plural(added, "member", "members")))
	}
	return middleware.Redirect(c, back)
}

// RemoveMember removes a member (POST /projects/:id/members/:uid/remove).
// Owner only; the owner cannot be removed.
func (h *Handler) RemoveMember(c echo.Context) error {
	pc := GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}
	back := "/projects/" + pc.Project.ID

	if err := h.service.RemoveMember(c.Request().Context(), pc.Project, c.Param("uid")); err != nil {
		return flashOrFail(c, err, back)
	}
	middleware.SetFlash(c, middleware.FlashSuccess, "Member removed.")
	return middleware.Redirect(c, back)
}

// --- Helpers ---

func (h *Handler) renderNewErrors(c echo.Context, req CreateProjectRequest, errs validate.Errors) error {
	users, err := h.service.AvailableUsers(c.Request().Context(), []string{auth.GetUserID(c)})
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusUnprocessableEntity, NewProjectPage(NewProjectData{
		Name:        req.Name,
		Description: req.Description,
		Selected:    req.UserIDs,
		Users:       users,
		Errors:      errs,
	}))
}

// partialAddError prefixes a client error with the members already added
// in the same request, since those rows are committed.
func partialAddError(err error, added int) error {
	appErr, ok := apperror.As(err)
	if !ok || added == 0 || appErr.Code >= http.StatusInternalServerError {
		return err
	}
	return &apperror.AppError{
		Code:    appErr.Code,
		Type:    appErr.Type,
		Message: fmt.Sprintf("Added %d %s, but %s",
			added, layouts.Plural(added, "member", "members"), lowerFirst(appErr.Message)),
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// flashOrFail turns client errors into a flash on the redirect target and
// passes server errors to the error handler.
func flashOrFail(c echo.Context, err error, back string) error {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Code >= http.StatusInternalServerError {
		return err
	}
	middleware.SetFlash(c, middleware.FlashError, appErr.Message)
	return middleware.Redirect(c, back)
}
