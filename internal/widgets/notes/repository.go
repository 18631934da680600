package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/keyxmakerx/canvass/internal/apperror"
)

// NoteRepository defines the data access contract for canvassing notes.
type NoteRepository interface {
	Create(ctx context.Context, note *Note) error
	FindByID(ctx context.Context, id string) (*Note, error)
	Update(ctx context.Context, note *Note) error
	Delete(ctx context.Context, id string) error

	// ListByProject returns a project's notes, newest first. A non-empty
	// query keeps notes whose contact name, contact email or text contains
	// it, ignoring case.
	ListByProject(ctx context.Context, projectID, query string) ([]Note, error)
}

// noteRepository is the MariaDB implementation of NoteRepository.
type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new MariaDB-backed note repository.
func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

// noteColumns is the SELECT column list for note queries, joined with the
// author.
const noteColumns = `n.id, n.project_id, n.user_id, n.contact_name, n.contact_email,
	n.notes, n.created_at, n.updated_at, u.name`

// Create inserts a new note and touches its project so the dashboard
// orders it as recently active.
func (r *noteRepository) Create(ctx context.Context, note *Note) error {
	query := `INSERT INTO canvassing_notes
		(id, project_id, user_id, contact_name, contact_email, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		note.ID, note.ProjectID, note.UserID, note.ContactName, note.ContactEmail,
		note.Notes, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE projects SET updated_at = ? WHERE id = ?`, note.CreatedAt, note.ProjectID,
	); err != nil {
		return fmt.Errorf("touching project: %w", err)
	}
	return nil
}

// FindByID retrieves a note by its ID.
func (r *noteRepository) FindByID(ctx context.Context, id string) (*Note, error) {
	query := `SELECT ` + noteColumns + `
		FROM canvassing_notes n
		INNER JOIN users u ON u.id = n.user_id
		WHERE n.id = ?`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("note not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying note: %w", err)
	}
	return note, nil
}

// Update saves the editable fields of a note.
func (r *noteRepository) Update(ctx context.Context, note *Note) error {
	query := `UPDATE canvassing_notes
		SET contact_name = ?, contact_email = ?, notes = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		note.ContactName, note.ContactEmail, note.Notes, note.UpdatedAt, note.ID,
	)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperror.NewNotFound("note not found")
	}
	return nil
}

// Delete removes a note.
func (r *noteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM canvassing_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperror.NewNotFound("note not found")
	}
	return nil
}

// ListByProject returns the project's notes, newest first.
func (r *noteRepository) ListByProject(ctx context.Context, projectID, query string) ([]Note, error) {
	sqlQuery := `SELECT ` + noteColumns + `
		FROM canvassing_notes n
		INNER JOIN users u ON u.id = n.user_id
		WHERE n.project_id = ?`
	args := []any{projectID}

	if q := strings.TrimSpace(query); q != "" {
		pattern := likePattern(q)
		sqlQuery += ` AND (n.contact_name LIKE ? OR n.contact_email LIKE ? OR n.notes LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	sqlQuery += ` ORDER BY n.created_at DESC`

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("listing project notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*Note, error) {
	n := &Note{}
	err := row.Scan(
		&n.ID, &n.ProjectID, &n.UserID, &n.ContactName, &n.ContactEmail,
		&n.Notes, &n.CreatedAt, &n.UpdatedAt, &n.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
