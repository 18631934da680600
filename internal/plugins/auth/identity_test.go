package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/canvass/internal/apperror"
)

func newTestResolver(t *testing.T, repo UserRepository) *IdentityResolver {
	t.Helper()
	return NewIdentityResolver(newTestSessionStore(t), repo)
}

func requestWithSession(t *testing.T, r *IdentityResolver, path, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		cookie, err := r.Sessions().Create(userID)
		require.NoError(t, err)
		req.AddCookie(cookie)
	}
	return req
}

func existingUsers(users ...*User) *mockUserRepo {
	return &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			for _, u := range users {
				if u.ID == id {
					return u, nil
				}
			}
			return nil, apperror.NewNotFound("user not found")
		},
	}
}

func TestCurrentUser_NoSession(t *testing.T) {
	r := newTestResolver(t, existingUsers())
	p, err := r.CurrentUser(context.Background(), requestWithSession(t, r, "/dashboard", ""))
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestCurrentUser_LoadsPrincipal(t *testing.T) {
	frodo := &User{ID: "u1", Email: "frodo@shire.me", Name: "Frodo"}
	r := newTestResolver(t, existingUsers(frodo))

	p, err := r.CurrentUser(context.Background(), requestWithSession(t, r, "/dashboard", "u1"))
	require.NoError(t, err)
	assert.Equal(t, &Principal{ID: "u1", Email: "frodo@shire.me", Name: "Frodo"}, p)
}

func TestCurrentUser_StaleSession(t *testing.T) {
	r := newTestResolver(t, existingUsers())

	p, err := r.CurrentUser(context.Background(), requestWithSession(t, r, "/dashboard", "deleted-user"))
	assert.Nil(t, p)
	assert.True(t, apperror.Is(err, apperror.TypeStaleSession))
}

func TestCurrentUser_StorageErrorIsNotStale(t *testing.T) {
	r := newTestResolver(t, &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return nil, errors.New("connection reset")
		},
	})

	_, err := r.CurrentUser(context.Background(), requestWithSession(t, r, "/dashboard", "u1"))
	assert.False(t, apperror.Is(err, apperror.TypeStaleSession))
	assert.Equal(t, http.StatusInternalServerError, apperror.SafeCode(err))
}

func TestRequireUserID_RedirectsWithReturnPath(t *testing.T) {
	r := newTestResolver(t, existingUsers())

	_, err := r.RequireUserID(requestWithSession(t, r, "/projects/p1", ""))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.Code)
	assert.Equal(t, "/login?redirectTo=%2Fprojects%2Fp1", appErr.Redirect)
}

func TestRequireUserID_ValidSession(t *testing.T) {
	r := newTestResolver(t, existingUsers())
	userID, err := r.RequireUserID(requestWithSession(t, r, "/projects/p1", "u9"))
	require.NoError(t, err)
	assert.Equal(t, "u9", userID)
}

func TestRequireUser_StaleSessionRedirectsToLogin(t *testing.T) {
	r := newTestResolver(t, existingUsers())

	_, err := r.RequireUser(context.Background(), requestWithSession(t, r, "/projects/p1", "ghost"))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.TypeStaleSession, appErr.Type)
	assert.Equal(t, "/login", appErr.Redirect)
}
