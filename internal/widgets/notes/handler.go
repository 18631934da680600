package notes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/middleware"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
	"github.com/keyxmakerx/canvass/internal/plugins/projects"
	"github.com/keyxmakerx/canvass/internal/validate"
)

// Handler handles HTTP requests for note operations. Handlers are thin:
// bind request, call service, render response. No business logic lives here.
type Handler struct {
	service NoteService
	now     func() time.Time
}

// NewHandler creates a new note handler backed by the given service.
func NewHandler(service NoteService) *Handler {
	return &Handler{service: service, now: time.Now}
}

// Panel renders the notes section of the project page. It satisfies
// projects.NotesPanel.
func (h *Handler) Panel(ctx context.Context, pc *projects.ProjectContext, userID, query string) (templ.Component, error) {
	list, err := h.service.List(ctx, pc.Project.ID, query)
	if err != nil {
		return nil, err
	}
	return PanelFragment(PanelData{
		ProjectID: pc.Project.ID,
		UserID:    userID,
		IsOwner:   pc.IsOwner(),
		Query:     query,
		Notes:     list,
	}), nil
}

// NewForm renders the note form (GET /projects/:id/notes/new).
func (h *Handler) NewForm(c echo.Context) error {
	pc := projects.GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}
	return middleware.Render(c, http.StatusOK, NewNotePage(FormData{
		Project: pc.Project,
		Errors:  validate.Errors{},
	}))
}

// Create processes the note form (POST /projects/:id/notes).
func (h *Handler) Create(c echo.Context) error {
	pc := projects.GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	form := FormData{Project: pc.Project, Values: req}
	if errs := req.Input().Validate(); errs.Any() {
		form.Errors = errs
		return middleware.Render(c, http.StatusUnprocessableEntity, NewNotePage(form))
	}

	if _, err := h.service.Create(c.Request().Context(), pc.Project.ID, auth.GetUserID(c), req.Input()); err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Code == http.StatusUnprocessableEntity {
			form.Errors = validate.Errors{"form": appErr.Message}
			return middleware.Render(c, http.StatusUnprocessableEntity, NewNotePage(form))
		}
		return err
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Note saved.")
	return middleware.Redirect(c, projectPath(pc))
}

// Show renders a single note (GET /projects/:id/notes/:noteId). The
// author sees an edit form.
func (h *Handler) Show(c echo.Context) error {
	pc := projects.GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}

	note, err := h.service.Get(c.Request().Context(), pc.Project.ID, c.Param("noteId"))
	if err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, ShowNotePage(h.detail(c, pc, note, nil)))
}

// Update saves an edited note (POST /projects/:id/notes/:noteId). Author only.
func (h *Handler) Update(c echo.Context) error {
	pc := projects.GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}
	ctx := c.Request().Context()
	userID := auth.GetUserID(c)

	note, err := h.service.Get(ctx, pc.Project.ID, c.Param("noteId"))
	if err != nil {
		return err
	}
	if !note.IsAuthor(userID) {
		return apperror.NewForbidden("Only the author can edit this note.")
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if errs := req.Input().Validate(); errs.Any() {
		return middleware.Render(c, http.StatusUnprocessableEntity, ShowNotePage(h.detail(c, pc, note, &FormData{
			Project: pc.Project,
			Values:  req,
			Errors:  errs,
		})))
	}

	if _, err := h.service.Update(ctx, pc.Project.ID, note.ID, userID, req.Input()); err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Code == http.StatusUnprocessableEntity {
			return middleware.Render(c, http.StatusUnprocessableEntity, ShowNotePage(h.detail(c, pc, note, &FormData{
				Project: pc.Project,
				Values:  req,
				Errors:  validate.Errors{"form": appErr.Message},
			})))
		}
		return err
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Note updated.")
	return middleware.Redirect(c, notePath(pc, note.ID))
}

// Delete removes a note (POST /projects/:id/notes/:noteId/delete). The
// author or the project owner only.
func (h *Handler) Delete(c echo.Context) error {
	pc := projects.GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}

	err := h.service.Delete(c.Request().Context(), pc.Project.ID, c.Param("noteId"), auth.GetUserID(c), pc.IsOwner())
	if err != nil {
		return err
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Note deleted.")
	return middleware.Redirect(c, projectPath(pc))
}

// ExportCSV downloads every note of the project (GET /projects/:id/export-csv).
func (h *Handler) ExportCSV(c echo.Context) error {
	pc := projects.GetProjectContext(c)
	if pc == nil {
		return apperror.NewMissingContext()
	}

	list, err := h.service.List(c.Request().Context(), pc.Project.ID, "")
	if err != nil {
		return err
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, CSVContentType)
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, ExportFilename(pc.Project.Name, h.now().UTC())))
	res.WriteHeader(http.StatusOK)
	return ExportCSV(res, list)
}

// --- Helpers ---

// detail builds the note page. form overrides the edit form values after a
// failed submit; otherwise the form is prefilled from the note.
func (h *Handler) detail(c echo.Context, pc *projects.ProjectContext, note *Note, form *FormData) DetailData {
	userID := auth.GetUserID(c)
	if form == nil {
		email := ""
		if note.ContactEmail != nil {
			email = *note.ContactEmail
		}
		form = &FormData{
			Project: pc.Project,
			Values: NoteRequest{
				ContactName:  note.ContactName,
				ContactEmail: email,
				Notes:        note.Notes,
			},
			Errors: validate.Errors{},
		}
	}
	return DetailData{
		Note:      note,
		Form:      *form,
		CanEdit:   note.IsAuthor(userID),
		CanDelete: note.CanDelete(userID, pc.IsOwner()),
	}
}

func projectPath(pc *projects.ProjectContext) string {
	return "/projects/" + pc.Project.ID
}

func notePath(pc *projects.ProjectContext, noteID string) string {
	return projectPath(pc) + "/notes/" + noteID
}
