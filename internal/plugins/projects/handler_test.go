package projects

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

	"github.com/keyxmakerx/canvass/internal/middleware"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
)

// ownerPost builds a POST to /projects/p1/members as the project owner,
// with the access middleware's context already in place.
func ownerPost(form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/projects/p1/members", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("p1")
	auth.SetPrincipal(c, principal("owner"))
	SetProjectContext(c, &ProjectContext{Project: testProject(), Decision: DecisionOwner})
	return c, rec
}

// readFlash replays the response's cookies into a new request and pops
// the flash the way the next page render would.
func readFlash(t *testing.T, rec *httptest.ResponseRecorder) (success, errMsg string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/projects/p1", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	return middleware.PopFlash(echo.New().NewContext(req, httptest.NewRecorder()))
}

func TestAddMembers_InvalidEmailAddsNobody(t *testing.T) {
	repo := &mockProjectRepo{
		addMemberFn: func(ctx context.Context, m *ProjectMember) error {
			t.Errorf("no member may be added when the email is invalid, got %s", m.UserID)
			return nil
		},
	}
	h := NewHandler(NewProjectService(repo, testUsers()), nil)

	c, rec := ownerPost(url.Values{"userIds": {"stranger"}, "email": {"not-an-email"}})
	require.NoError(t, h.AddMembers(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects/p1", rec.Header().Get(echo.HeaderLocation))
	success, errMsg := readFlash(t, rec)
	assert.Empty(t, success)
	assert.NotEmpty(t, errMsg)
}

func TestAddMembers_FailedInviteReportsEarlierAdds(t *testing.T) {
	var added []string
	repo := &mockProjectRepo{
		addMemberFn: func(ctx context.Context, m *ProjectMember) error {
			added = append(added, m.UserID)
			return nil
		},
	}
	h := NewHandler(NewProjectService(repo, testUsers()), nil)

	c, rec := ownerPost(url.Values{"userIds": {"stranger"}, "email": {"nobody@example.com"}})
	require.NoError(t, h.AddMembers(c))

	assert.Equal(t, []string{"stranger"}, added)
	_, errMsg := readFlash(t, rec)
	assert.Equal(t, "Added 1 member, but no user found with that email.", errMsg)
}

func TestAddMembers_SuccessFlash(t *testing.T) {
	h := NewHandler(NewProjectService(&mockProjectRepo{}, testUsers()), nil)

	c, rec := ownerPost(url.Values{"email": {"carol@example.com"}})
	require.NoError(t, h.AddMembers(c))

	success, errMsg := readFlash(t, rec)
	assert.Equal(t, "Added 1 member.", success)
	assert.Empty(t, errMsg)
}
