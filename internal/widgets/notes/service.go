package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/sanitize"
)

// NoteService defines the business logic contract for canvassing notes.
// Callers have already passed the project Access Gate; the service enforces
// the per-note rules on top of it.
type NoteService interface {
	Create(ctx context.Context, projectID, userID string, input NoteInput) (*Note, error)

	// Get returns the note only if it belongs to projectID.
	Get(ctx context.Context, projectID, noteID string) (*Note, error)

	// Update changes a note. Only its author may do so.
	Update(ctx context.Context, projectID, noteID, userID string, input NoteInput) (*Note, error)

	// Delete removes a note. Its author or the project owner may do so.
	Delete(ctx context.Context, projectID, noteID, userID string, isProjectOwner bool) error

	List(ctx context.Context, projectID, query string) ([]Note, error)
}

// noteService implements NoteService.
type noteService struct {
	repo NoteRepository
	now  func() time.Time
}

// NewNoteService creates a new note service.
func NewNoteService(repo NoteRepository) NoteService {
	return &noteService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create validates, sanitizes and persists a new note.
func (s *noteService) Create(ctx context.Context, projectID, userID string, input NoteInput) (*Note, error) {
	clean, err := prepare(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	note := &Note{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		UserID:       userID,
		ContactName:  clean.ContactName,
		ContactEmail: optional(clean.ContactEmail),
		Notes:        clean.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating note: %w", err))
	}

	slog.Info("note created",
		slog.String("note_id", note.ID),
		slog.String("project_id", projectID),
		slog.String("user_id", userID),
	)
	return note, nil
}

// Get retrieves a note scoped to its project. A note from another project
// is reported as missing so IDs from other projects stay hidden.
func (s *noteService) Get(ctx context.Context, projectID, noteID string) (*Note, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("loading note: %w", err))
	}
	if note.ProjectID != projectID {
		return nil, apperror.NewNotFound("note not found")
	}
	return note, nil
}

// Update replaces the editable fields of a note written by userID.
func (s *noteService) Update(ctx context.Context, projectID, noteID, userID string, input NoteInput) (*Note, error) {
	note, err := s.Get(ctx, projectID, noteID)
	if err != nil {
		return nil, err
	}
	if !note.IsAuthor(userID) {
		return nil, apperror.NewForbidden("Only the author can edit this note.")
	}

	clean, err := prepare(input)
	if err != nil {
		return nil, err
	}
	note.ContactName = clean.ContactName
	note.ContactEmail = optional(clean.ContactEmail)
	note.Notes = clean.Notes
	note.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, note); err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("updating note: %w", err))
	}

	slog.Info("note updated",
		slog.String("note_id", note.ID),
		slog.String("user_id", userID),
	)
	return note, nil
}

// Delete removes a note if userID wrote it or owns the project.
func (s *noteService) Delete(ctx context.Context, projectID, noteID, userID string, isProjectOwner bool) error {
	note, err := s.Get(ctx, projectID, noteID)
	if err != nil {
		return err
	}
	if !note.CanDelete(userID, isProjectOwner) {
		return apperror.NewForbidden("Only the author or the project owner can delete this note.")
	}

	if err := s.repo.Delete(ctx, note.ID); err != nil {
		if _, ok := apperror.As(err); ok {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("deleting note: %w", err))
	}

	slog.Info("note deleted",
		slog.String("note_id", note.ID),
		slog.String("project_id", projectID),
		slog.String("user_id", userID),
	)
	return nil
}

// List returns the project's notes, newest first, filtered by query.
func (s *noteService) List(ctx context.Context, projectID, query string) ([]Note, error) {
	notes, err := s.repo.ListByProject(ctx, projectID, query)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing notes: %w", err))
	}
	return notes, nil
}

// --- Helpers ---

// prepare validates input, strips markup and validates again so text that
// was only markup cannot slip through as empty.
func prepare(input NoteInput) (NoteInput, error) {
	if errs := input.Validate(); errs.Any() {
		return NoteInput{}, apperror.NewValidation(errs.First())
	}

	clean := NoteInput{
		ContactName:  sanitize.Text(input.ContactName),
		ContactEmail: strings.ToLower(strings.TrimSpace(input.ContactEmail)),
		Notes:        sanitize.Text(input.Notes),
	}
	if errs := clean.Validate(); errs.Any() {
		return NoteInput{}, apperror.NewValidation(errs.First())
	}
	return clean, nil
}

// optional maps an empty string to a NULL column.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
