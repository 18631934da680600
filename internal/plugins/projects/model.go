// Package projects manages canvassing projects and their membership. A
// project is the unit every canvassing note belongs to; only its owner and
// members may see it, and only the owner may change who belongs to it.
package projects

import (
	"context"
	"time"
)

// --- Role System ---

// errAlreadyMember is the conflict message for a repeated membership.
const errAlreadyMember = "That user is already a member of this project."

// Role is a user's standing within a project. There is no hierarchy beyond
// owner and member.
type Role string

const (
	// RoleOwner is held by the project's creator. One per project.
	RoleOwner Role = "owner"

	// RoleMember can read the project and write canvassing notes.
	RoleMember Role = "member"
)

// IsValid returns true if r is a role the database accepts.
func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleMember
}

// DisplayName returns a human-readable label for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleOwner:
		return "Owner"
	case RoleMember:
		return "Member"
	default:
		return "None"
	}
}

// --- Domain Models ---

// Project is a canvassing project. OwnerName, NoteCount and MemberCount are
// derived by list queries; Members is only populated by GetWithMembers.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	OwnerName   string          `json:"ownerName,omitempty"`
	NoteCount   int             `json:"noteCount"`
	MemberCount int             `json:"memberCount"`
	Members     []ProjectMember `json:"members,omitempty"`
}

// HasMember reports whether userID appears in the loaded member list.
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user IDs of the loaded members.
func (p *Project) MemberIDs() []string {
	ids := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// ProjectMember is one membership row joined with the user's display info.
type ProjectMember struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joinedAt"`

	Name  string `json:"name"`
	Email string `json:"email"`
}

// MemberUser is the subset of a user the projects package needs.
type MemberUser struct {
	ID    string
	Email string
	Name  string
}

// UserFinder looks users up without this package importing user storage.
type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (*MemberUser, error)
	FindUserByID(ctx context.Context, id string) (*MemberUser, error)
	ListUsersExcept(ctx context.Context, excludeIDs []string) ([]MemberUser, error)
}

// --- Request DTOs (bound from HTTP forms) ---

// CreateProjectRequest is the form payload for POST /projects.
type CreateProjectRequest struct {
	Name        string   `form:"name"`
	Description string   `form:"description"`
	UserIDs     []string `form:"userIds"`
}

// AddMembersRequest is the form payload for POST /projects/:id/members.
// Either field may be empty but not both.
type AddMembersRequest struct {
	UserIDs []string `form:"userIds"`
	Email   string   `form:"email"`
}

// --- Service Input DTOs ---

// CreateProjectInput is the validated input for creating a project.
type CreateProjectInput struct {
	Name        string
	Description string
	MemberIDs   []string
}
