package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/database"
)

// ProjectRepository defines the data access contract for projects and
// their membership rows. All SQL lives in the concrete implementation.
type ProjectRepository interface {
	// Create inserts the project and its initial membership rows in one
	// transaction.
	Create(ctx context.Context, project *Project, members []ProjectMember) error
	FindByID(ctx context.Context, id string) (*Project, error)

	// ListForUser returns projects the user owns or belongs to, most
	// recently updated first. A non-empty query filters by name.
	ListForUser(ctx context.Context, userID, query string) ([]Project, error)

	// Membership.
	AddMember(ctx context.Context, member *ProjectMember) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	FindMember(ctx context.Context, projectID, userID string) (*ProjectMember, error)
	ListMembers(ctx context.Context, projectID string) ([]ProjectMember, error)
}

// projectRepository implements ProjectRepository with MariaDB queries.
type projectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// --- Projects ---

// Create inserts a project row followed by its membership rows.
func (r *projectRepository) Create(ctx context.Context, project *Project, members []ProjectMember) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning project transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.Description, project.OwnerID,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	for _, m := range members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_members (id, project_id, user_id, role, joined_at)
			 VALUES (?, ?, ?, ?, ?)`,
			m.ID, project.ID, m.UserID, string(m.Role), m.JoinedAt,
		)
		if database.IsDuplicateEntry(err) {
			return apperror.NewConflict(errAlreadyMember)
		}
		if err != nil {
			return fmt.Errorf("inserting project member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing project: %w", err)
	}
	return nil
}

// FindByID retrieves a project with its owner's name.
// Returns apperror.NotFound if no project exists with this ID.
func (r *projectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
	                 u.name
	          FROM projects p
	          INNER JOIN users u ON u.id = p.owner_id
	          WHERE p.id = ?`

	p := &Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
		&p.OwnerName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying project by id: %w", err)
	}
	return p, nil
}

// ListForUser returns the user's projects with owner name, note count and
// member count.
func (r *projectRepository) ListForUser(ctx context.Context, userID, query string) ([]Project, error) {
	sqlQuery := `SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
	                    u.name,
	                    (SELECT COUNT(*) FROM canvassing_notes n WHERE n.project_id = p.id),
	                    (SELECT COUNT(*) FROM project_members pm WHERE pm.project_id = p.id)
	             FROM projects p
	             INNER JOIN users u ON u.id = p.owner_id
	             WHERE (p.owner_id = ?
	                    OR EXISTS (SELECT 1 FROM project_members m
	                               WHERE m.project_id = p.id AND m.user_id = ?))`
	args := []any{userID, userID}

	if q := strings.TrimSpace(query); q != "" {
		sqlQuery += ` AND p.name LIKE ?`
		args = append(args, likePattern(q))
	}
	sqlQuery += ` ORDER BY p.updated_at DESC`

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("listing user projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
			&p.OwnerName, &p.NoteCount, &p.MemberCount,
		); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// --- Membership ---

// AddMember inserts a new membership row.
func (r *projectRepository) AddMember(ctx context.Context, member *ProjectMember) error {
	if !member.Role.IsValid() {
		return fmt.Errorf("adding project member: invalid role %q", member.Role)
	}
	query := `INSERT INTO project_members (id, project_id, user_id, role, joined_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		member.ID, member.ProjectID, member.UserID, string(member.Role), member.JoinedAt,
	)
	if database.IsDuplicateEntry(err) {
		return apperror.NewConflict(errAlreadyMember)
	}
	if err != nil {
		return fmt.Errorf("adding project member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row.
func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ? AND user_id = ?`,
		projectID, userID,
	)
	if err != nil {
		return fmt.Errorf("removing project member: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperror.NewNotFound("member not found")
	}
	return nil
}

// FindMember retrieves a user's membership with their display info.
func (r *projectRepository) FindMember(ctx context.Context, projectID, userID string) (*ProjectMember, error) {
	query := `SELECT pm.id, pm.project_id, pm.user_id, pm.role, pm.joined_at,
	                 u.name, u.email
	          FROM project_members pm
	          INNER JOIN users u ON u.id = pm.user_id
	          WHERE pm.project_id = ? AND pm.user_id = ?`

	m := &ProjectMember{}
	var role string
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(
		&m.ID, &m.ProjectID, &m.UserID, &role, &m.JoinedAt,
		&m.Name, &m.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("member not found")
	}
	if err != nil {
		return nil, fmt.Errorf("finding project member: %w", err)
	}
	m.Role = Role(role)
	return m, nil
}

// ListMembers returns all members of a project, owner first.
func (r *projectRepository) ListMembers(ctx context.Context, projectID string) ([]ProjectMember, error) {
	query := `SELECT pm.id, pm.project_id, pm.user_id, pm.role, pm.joined_at,
	                 u.name, u.email
	          FROM project_members pm
	          INNER JOIN users u ON u.id = pm.user_id
	          WHERE pm.project_id = ?
	          ORDER BY FIELD(pm.role, 'owner', 'member'), u.name`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project members: %w", err)
	}
	defer rows.Close()

	var members []ProjectMember
	for rows.Next() {
		var m ProjectMember
		var role string
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.UserID, &role, &m.JoinedAt,
			&m.Name, &m.Email,
		); err != nil {
			return nil, fmt.Errorf("scanning member row: %w", err)
		}
		m.Role = Role(role)
		members = append(members, m)
	}
	return members, rows.Err()
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps q for a case-insensitive substring LIKE match. The
// table collation is case-insensitive.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
