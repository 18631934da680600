package projects

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
)

// testProject is owned by "owner" with "member" as its only other member.
func testProject() *Project {
	return &Project{
		ID:      "p1",
		Name:    "North Ward",
		OwnerID: "owner",
		Members: []ProjectMember{
			{ProjectID: "p1", UserID: "owner", Role: RoleOwner},
			{ProjectID: "p1", UserID: "member", Role: RoleMember},
		},
	}
}

func principal(id string) *auth.Principal {
	return &auth.Principal{ID: id, Email: id + "@example.com", Name: id}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		want      Decision
	}{
		{"owner", principal("owner"), DecisionOwner},
		{"member", principal("member"), DecisionMember},
		{"stranger", principal("stranger"), DecisionDenied},
		{"no principal", nil, DecisionUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.principal, testProject()))
		})
	}
}

func TestCheck_OwnerWithoutMembershipRow(t *testing.T) {
	p := testProject()
	p.Members = p.Members[1:]

	d := Check(principal("owner"), p)
	assert.Equal(t, DecisionOwner, d)
	assert.True(t, d.Authorized())
}

func TestCheck_NilProjectDenies(t *testing.T) {
	assert.Equal(t, DecisionDenied, Check(principal("owner"), nil))
	assert.Equal(t, DecisionUnauthenticated, Check(nil, nil))
}

func TestCheckOwner(t *testing.T) {
	p := testProject()
	assert.Equal(t, DecisionOwner, CheckOwner(principal("owner"), p))
	assert.Equal(t, DecisionDenied, CheckOwner(principal("member"), p))
	assert.Equal(t, DecisionDenied, CheckOwner(principal("stranger"), p))
	assert.Equal(t, DecisionUnauthenticated, CheckOwner(nil, p))

	// The member passes the read check but not the owner check.
	assert.True(t, Check(principal("member"), p).Authorized())
	assert.False(t, CheckOwner(principal("member"), p).Authorized())
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, DecisionOwner.Err("/projects/p1"))
	assert.NoError(t, DecisionMember.Err("/projects/p1"))

	err := DecisionUnauthenticated.Err("/projects/p1")
	appErr, ok := apperror.As(err)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusUnauthorized, appErr.Code)
		assert.Equal(t, "/login?redirectTo=%2Fprojects%2Fp1", appErr.Redirect)
	}

	err = DecisionDenied.Err("/projects/p1")
	appErr, ok = apperror.As(err)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusForbidden, appErr.Code)
		assert.Empty(t, appErr.Redirect)
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "owner", DecisionOwner.String())
	assert.Equal(t, "member", DecisionMember.String())
	assert.Equal(t, "denied", DecisionDenied.String())
	assert.Equal(t, "unauthenticated", DecisionUnauthenticated.String())
}
