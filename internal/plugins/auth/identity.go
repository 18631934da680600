package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/keyxmakerx/canvass/internal/apperror"
)

// IdentityResolver turns a request's session cookie into a Principal by
// verifying the cookie and loading the user it names.
type IdentityResolver struct {
	sessions *SessionStore
	users    UserRepository
}

// NewIdentityResolver creates a resolver over the given session store and
// user storage.
func NewIdentityResolver(sessions *SessionStore, users UserRepository) *IdentityResolver {
	return &IdentityResolver{sessions: sessions, users: users}
}

// Sessions exposes the underlying store for handlers that set or clear
// the cookie.
func (r *IdentityResolver) Sessions() *SessionStore {
	return r.sessions
}

// CurrentUserID returns the user ID from a valid session cookie.
func (r *IdentityResolver) CurrentUserID(req *http.Request) (string, bool) {
	return r.sessions.ReadRequest(req)
}

// CurrentUser loads the signed-in user. It returns (nil, nil) when there
// is no valid session and a StaleSession error when the session names a
// user that no longer exists; the caller must then destroy the cookie.
// Storage failures are returned as-is and do not end the session.
func (r *IdentityResolver) CurrentUser(ctx context.Context, req *http.Request) (*Principal, error) {
	userID, ok := r.CurrentUserID(req)
	if !ok {
		return nil, nil
	}
	return r.load(ctx, userID)
}

// RequireUserID returns the session's user ID or an Unauthenticated error
// that redirects to the login page and back to the requested path.
func (r *IdentityResolver) RequireUserID(req *http.Request) (string, error) {
	userID, ok := r.CurrentUserID(req)
	if !ok {
		return "", apperror.NewUnauthenticated(req.URL.Path)
	}
	return userID, nil
}

// RequireUser is RequireUserID followed by loading the user.
func (r *IdentityResolver) RequireUser(ctx context.Context, req *http.Request) (*Principal, error) {
	userID, err := r.RequireUserID(req)
	if err != nil {
		return nil, err
	}
	return r.load(ctx, userID)
}

func (r *IdentityResolver) load(ctx context.Context, userID string) (*Principal, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if appErr, ok := apperror.As(err); ok && appErr.Code == http.StatusNotFound {
			return nil, apperror.NewStaleSession()
		}
		return nil, apperror.NewInternal(fmt.Errorf("loading session user: %w", err))
	}
	return user.Principal(), nil
}
