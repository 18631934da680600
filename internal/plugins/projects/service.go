package projects

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/database"
	"github.com/keyxmakerx/canvass/internal/sanitize"
	"github.com/keyxmakerx/canvass/internal/validate"
)

// ProjectService defines the business logic contract for projects and
// membership. Authorization is not its concern: callers pass projects that
// have already been through the Access Gate.
type ProjectService interface {
	Create(ctx context.Context, ownerID string, input CreateProjectInput) (*Project, error)

	// GetWithMembers loads a project and every membership row. This is the
	// shape the Access Gate decides on.
	GetWithMembers(ctx context.Context, id string) (*Project, error)
	ListForUser(ctx context.Context, userID, query string) ([]Project, error)

	// AddMembers adds each listed user that is not already the owner or a
	// member and returns how many were added.
	AddMembers(ctx context.Context, project *Project, userIDs []string) (int, error)
	InviteByEmail(ctx context.Context, project *Project, email string) error
	RemoveMember(ctx context.Context, project *Project, userID string) error

	// AvailableUsers lists users outside excludeIDs for member pickers.
	AvailableUsers(ctx context.Context, excludeIDs []string) ([]MemberUser, error)
}

// projectService implements ProjectService.
type projectService struct {
	repo  ProjectRepository
	users UserFinder
	now   func() time.Time
}

// NewProjectService creates a new project service.
func NewProjectService(repo ProjectRepository, users UserFinder) ProjectService {
	return &projectService{
		repo:  repo,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the input, creates the project and records the owner as
// a member with the owner role. Selected users join as members.
func (s *projectService) Create(ctx context.Context, ownerID string, input CreateProjectInput) (*Project, error) {
	if msg := validate.ProjectName(input.Name); msg != "" {
		return nil, apperror.NewValidation(msg)
	}
	if msg := validate.Description(input.Description); msg != "" {
		return nil, apperror.NewValidation(msg)
	}

	name := sanitize.Text(input.Name)
	if msg := validate.ProjectName(name); msg != "" {
		return nil, apperror.NewValidation(msg)
	}

	now := s.now()
	project := &Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: sanitize.OptionalText(&input.Description),
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	members := []ProjectMember{{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		UserID:    ownerID,
		Role:      RoleOwner,
		JoinedAt:  now,
	}}
	for _, id := range dedupe(input.MemberIDs) {
		if id == ownerID {
			continue
		}
		if _, err := s.users.FindUserByID(ctx, id); err != nil {
			return nil, userLookupError(err, "One of the selected users no longer exists.")
		}
		members = append(members, ProjectMember{
			ID:        uuid.NewString(),
			ProjectID: project.ID,
			UserID:    id,
			Role:      RoleMember,
			JoinedAt:  now,
		})
	}

	if err := s.repo.Create(ctx, project, members); err != nil {
		if apperror.Is(err, apperror.TypeConflict) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating project: %w", err))
	}
	project.MemberCount = len(members)

	slog.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("owner_id", ownerID),
		slog.Int("members", len(members)),
	)
	return project, nil
}

// GetWithMembers retrieves a project and its membership rows.
func (s *projectService) GetWithMembers(ctx context.Context, id string) (*Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading project members: %w", err))
	}
	project.Members = members
	project.MemberCount = len(members)
	return project, nil
}

// ListForUser returns the user's projects, optionally filtered by name.
func (s *projectService) ListForUser(ctx context.Context, userID, query string) ([]Project, error) {
	projects, err := s.repo.ListForUser(ctx, userID, query)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing projects: %w", err))
	}
	return projects, nil
}

// --- Membership ---

// AddMembers adds users by ID. Users that already belong are skipped.
func (s *projectService) AddMembers(ctx context.Context, project *Project, userIDs []string) (int, error) {
	added := 0
	for _, id := range dedupe(userIDs) {
		if id == project.OwnerID || project.HasMember(id) {
			continue
		}
		user, err := s.users.FindUserByID(ctx, id)
		if err != nil {
			return added, userLookupError(err, "One of the selected users no longer exists.")
		}
		if err := s.addMember(ctx, project, user); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// InviteByEmail adds the user registered under email.
func (s *projectService) InviteByEmail(ctx context.Context, project *Project, email string) error {
	user, err := s.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return userLookupError(err, "No user found with that email.")
	}
	if user.ID == project.OwnerID || project.HasMember(user.ID) {
		return apperror.NewConflict(errAlreadyMember)
	}
	return s.addMember(ctx, project, user)
}

// addMember inserts the membership row and mirrors it on project so later
// calls in the same request see it.
func (s *projectService) addMember(ctx context.Context, project *Project, user *MemberUser) error {
	member := ProjectMember{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      RoleMember,
		JoinedAt:  s.now(),
		Name:      user.Name,
		Email:     user.Email,
	}
	// A double-submitted invite can lose the race on the unique key.
	if err := s.repo.AddMember(ctx, &member); err != nil {
		if apperror.Is(err, apperror.TypeConflict) || database.IsDuplicateEntry(err) {
			return apperror.NewConflict(errAlreadyMember)
		}
		return apperror.NewInternal(fmt.Errorf("adding member: %w", err))
	}
	project.Members = append(project.Members, member)

	slog.Info("member added to project",
		slog.String("project_id", project.ID),
		slog.String("user_id", user.ID),
	)
	return nil
}

// RemoveMember removes a user from a project. The owner cannot be removed.
func (s *projectService) RemoveMember(ctx context.Context, project *Project, userID string) error {
	if userID == project.OwnerID {
		return apperror.NewBadRequest("The project owner cannot be removed.")
	}

	member, err := s.repo.FindMember(ctx, project.ID, userID)
	if err != nil {
		return err
	}
	if member.Role == RoleOwner {
		return apperror.NewBadRequest("The project owner cannot be removed.")
	}

	if err := s.repo.RemoveMember(ctx, project.ID, userID); err != nil {
		if _, ok := apperror.As(err); ok {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("removing member: %w", err))
	}

	slog.Info("member removed from project",
		slog.String("project_id", project.ID),
		slog.String("user_id", userID),
	)
	return nil
}

// AvailableUsers lists every user not in excludeIDs.
func (s *projectService) AvailableUsers(ctx context.Context, excludeIDs []string) ([]MemberUser, error) {
	users, err := s.users.ListUsersExcept(ctx, excludeIDs)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing available users: %w", err))
	}
	return users, nil
}

// --- Helpers ---

// userLookupError maps a missing user to a 400 with msg and anything else
// to a 500.
func userLookupError(err error, msg string) error {
	if appErr, ok := apperror.As(err); ok && appErr.Code == http.StatusNotFound {
		return apperror.NewBadRequest(msg)
	}
	return apperror.NewInternal(fmt.Errorf("looking up user: %w", err))
}

// dedupe drops blanks and repeats while keeping order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
