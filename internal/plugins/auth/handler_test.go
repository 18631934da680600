package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/metrics"
)

func newTestHandler(t *testing.T, repo *mockUserRepo) (*Handler, *SessionStore) {
	t.Helper()
	sessions := newTestSessionStore(t)
	svc := NewAuthService(repo, testHasher(), metrics.Nop{})
	return NewHandler(svc, sessions, metrics.Nop{}), sessions
}

func postForm(path string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req, httptest.NewRecorder()
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginHandler_SuccessSetsSessionAndRedirects(t *testing.T) {
	stored := userWithPassword(t, "Password123!")
	h, sessions := newTestHandler(t, &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) { return stored, nil },
	})

	e := echo.New()
	req, rec := postForm("/login", url.Values{
		"email":      {"frodo@shire.me"},
		"password":   {"Password123!"},
		"redirectTo": {"/projects/p1"},
	})
	require.NoError(t, h.Login(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects/p1", rec.Header().Get(echo.HeaderLocation))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	userID, ok := sessions.Read(cookie.Value)
	assert.True(t, ok)
	assert.Equal(t, stored.ID, userID)
}

func TestLoginHandler_IgnoresOffsiteRedirect(t *testing.T) {
	stored := userWithPassword(t, "Password123!")
	h, _ := newTestHandler(t, &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) { return stored, nil },
	})

	e := echo.New()
	req, rec := postForm("/login", url.Values{
		"email":      {"frodo@shire.me"},
		"password":   {"Password123!"},
		"redirectTo": {"//evil.example.com"},
	})
	require.NoError(t, h.Login(e.NewContext(req, rec)))
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestLoginHandler_InvalidCredentialsRendersGenericError(t *testing.T) {
	h, _ := newTestHandler(t, &mockUserRepo{})

	e := echo.New()
	req, rec := postForm("/login", url.Values{
		"email":    {"nobody@shire.me"},
		"password": {"Password123!"},
	})
	require.NoError(t, h.Login(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password. Please try again.")
	assert.Nil(t, sessionCookie(rec))
}

func TestRegisterHandler_ValidationErrors(t *testing.T) {
	h, _ := newTestHandler(t, &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			t.Error("create must not be called for invalid input")
			return nil
		},
	})

	e := echo.New()
	req, rec := postForm("/register", url.Values{
		"name":     {"S"},
		"email":    {"not-an-email"},
		"password": {"weak"},
		"confirm":  {"weak"},
	})
	require.NoError(t, h.Register(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Name must be at least 2 characters long")
	assert.Contains(t, body, "Invalid email address format")
	assert.Contains(t, body, "Password must be at least 8 characters long")
}

func TestRegisterHandler_SuccessSignsIn(t *testing.T) {
	h, sessions := newTestHandler(t, &mockUserRepo{})

	e := echo.New()
	req, rec := postForm("/register", url.Values{
		"name":     {"Samwise Gamgee"},
		"email":    {"sam@shire.me"},
		"password": {"Potatoes1!"},
		"confirm":  {"Potatoes1!"},
	})
	require.NoError(t, h.Register(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	_, ok := sessions.Read(cookie.Value)
	assert.True(t, ok)
}

func TestLogoutHandler_ClearsCookie(t *testing.T) {
	h, _ := newTestHandler(t, &mockUserRepo{})

	e := echo.New()
	req, rec := postForm("/logout", url.Values{})
	require.NoError(t, h.Logout(e.NewContext(req, rec)))

	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

// --- Middleware Tests ---

func TestRequireAuth_NoSession(t *testing.T) {
	r := newTestResolver(t, existingUsers())
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/projects/p1", nil)
	rec := httptest.NewRecorder()

	called := false
	err := RequireAuth(r, nil)(func(c echo.Context) error {
		called = true
		return nil
	})(e.NewContext(req, rec))

	assert.False(t, called)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "/login?redirectTo=%2Fprojects%2Fp1", appErr.Redirect)
}

func TestRequireAuth_StoresPrincipal(t *testing.T) {
	frodo := &User{ID: "u1", Email: "frodo@shire.me", Name: "Frodo"}
	r := newTestResolver(t, existingUsers(frodo))
	e := echo.New()
	req := requestWithSession(t, r, "/dashboard", "u1")
	rec := httptest.NewRecorder()

	var got *Principal
	var gotID string
	err := RequireAuth(r, nil)(func(c echo.Context) error {
		got = GetPrincipal(c)
		gotID = GetUserID(c)
		return nil
	})(e.NewContext(req, rec))

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Frodo", got.Name)
	assert.Equal(t, "u1", gotID)
}

func TestRequireAuth_StaleSessionClearsCookie(t *testing.T) {
	r := newTestResolver(t, existingUsers())
	e := echo.New()
	req := requestWithSession(t, r, "/dashboard", "ghost")
	rec := httptest.NewRecorder()

	err := RequireAuth(r, nil)(func(c echo.Context) error { return nil })(e.NewContext(req, rec))

	assert.True(t, apperror.Is(err, apperror.TypeStaleSession))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestRedirectIfAuthenticated(t *testing.T) {
	r := newTestResolver(t, existingUsers(&User{ID: "u1", Email: "frodo@shire.me", Name: "Frodo"}))
	e := echo.New()
	mw := RedirectIfAuthenticated(r, "/dashboard")
	next := func(c echo.Context) error { return c.String(http.StatusOK, "login page") }

	rec := httptest.NewRecorder()
	require.NoError(t, mw(next)(e.NewContext(requestWithSession(t, r, "/login", "u1"), rec)))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

	rec = httptest.NewRecorder()
	require.NoError(t, mw(next)(e.NewContext(requestWithSession(t, r, "/login", ""), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedirectIfAuthenticated_HTMX(t *testing.T) {
	r := newTestResolver(t, existingUsers(&User{ID: "u1", Email: "frodo@shire.me", Name: "Frodo"}))
	e := echo.New()
	next := func(c echo.Context) error { return c.String(http.StatusOK, "login page") }

	req := requestWithSession(t, r, "/login", "u1")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	require.NoError(t, RedirectIfAuthenticated(r, "/dashboard")(next)(e.NewContext(req, rec)))

	assert.Equal(t, "/dashboard", rec.Header().Get("HX-Redirect"))
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
}

func TestRedirectIfAuthenticated_StaleSessionShowsPage(t *testing.T) {
	r := newTestResolver(t, existingUsers())
	e := echo.New()
	next := func(c echo.Context) error { return c.String(http.StatusOK, "login page") }

	rec := httptest.NewRecorder()
	require.NoError(t, RedirectIfAuthenticated(r, "/dashboard")(next)(e.NewContext(requestWithSession(t, r, "/login", "deleted"), rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}
