// Package notes implements the canvassing notes widget. A note records one
// doorstep conversation: who was contacted, how to reach them and what was
// said. Notes are scoped to a project and visible to all of its members;
// only the author may edit a note, and the author or the project owner may
// delete it.
//
// Notes are mounted on every project page and can be exported as CSV.
package notes

import (
	"time"

	"github.com/keyxmakerx/canvass/internal/validate"
)

// Note is a single canvassing note. AuthorName is derived from the users
// table by every read query.
type Note struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	UserID       string    `json:"userId"`
	ContactName  string    `json:"contactName"`
	ContactEmail *string   `json:"contactEmail,omitempty"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	AuthorName string `json:"authorName"`
}

// IsAuthor reports whether userID wrote the note.
func (n *Note) IsAuthor(userID string) bool {
	return n.UserID == userID
}

// CanDelete reports whether userID may delete the note: its author or the
// owner of its project.
func (n *Note) CanDelete(userID string, isProjectOwner bool) bool {
	return n.IsAuthor(userID) || isProjectOwner
}

// Edited reports whether the note changed after it was created.
func (n *Note) Edited() bool {
	return n.UpdatedAt.Sub(n.CreatedAt) > time.Second
}

// --- Request DTOs ---

// NoteRequest is the form payload for creating or updating a note.
type NoteRequest struct {
	ContactName  string `form:"contactName"`
	ContactEmail string `form:"contactEmail"`
	Notes        string `form:"notes"`
}

// Input converts the form payload into service input.
func (r NoteRequest) Input() NoteInput {
	return NoteInput{
		ContactName:  r.ContactName,
		ContactEmail: r.ContactEmail,
		Notes:        r.Notes,
	}
}

// --- Service Input DTOs ---

// NoteInput is the content of a note before validation.
type NoteInput struct {
	ContactName  string
	ContactEmail string
	Notes        string
}

// Validate returns per-field messages keyed by form field name.
func (in NoteInput) Validate() validate.Errors {
	errs := validate.Errors{}
	errs.Add("contactName", validate.ContactName(in.ContactName))
	errs.Add("contactEmail", validate.OptionalEmail(in.ContactEmail))
	errs.Add("notes", validate.Notes(in.Notes))
	return errs
}
