package projects

import (
	"context"

	"github.com/keyxmakerx/canvass/internal/plugins/auth"
)

// UserFinderAdapter wraps auth.UserRepository to satisfy the UserFinder
// interface. Only this file references user storage.
type UserFinderAdapter struct {
	repo auth.UserRepository
}

// NewUserFinderAdapter creates a new adapter around the auth repository.
func NewUserFinderAdapter(repo auth.UserRepository) UserFinder {
	return &UserFinderAdapter{repo: repo}
}

// FindUserByEmail looks up a user by email and maps to MemberUser.
func (a *UserFinderAdapter) FindUserByEmail(ctx context.Context, email string) (*MemberUser, error) {
	user, err := a.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toMemberUser(user), nil
}

// FindUserByID looks up a user by ID and maps to MemberUser.
func (a *UserFinderAdapter) FindUserByID(ctx context.Context, id string) (*MemberUser, error) {
	user, err := a.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMemberUser(user), nil
}

// ListUsersExcept lists users outside excludeIDs, ordered by name.
func (a *UserFinderAdapter) ListUsersExcept(ctx context.Context, excludeIDs []string) ([]MemberUser, error) {
	users, err := a.repo.ListExcept(ctx, excludeIDs)
	if err != nil {
		return nil, err
	}
	out := make([]MemberUser, 0, len(users))
	for i := range users {
		out = append(out, *toMemberUser(&users[i]))
	}
	return out, nil
}

func toMemberUser(u *auth.User) *MemberUser {
	return &MemberUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
