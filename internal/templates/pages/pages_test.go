package pages

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/canvass/internal/templates/layouts"
)

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorPage(http.StatusForbidden, "You do not have access to this project.").Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "403")
	assert.Contains(t, out, "Forbidden")
	assert.Contains(t, out, "You do not have access to this project.")
	assert.Contains(t, out, `href="/login"`)
}

func TestErrorPage_SignedIn(t *testing.T) {
	ctx := layouts.SetIsAuthenticated(context.Background(), true)
	ctx = layouts.SetUser(ctx, "u1", "Alice Smith", "alice@example.com")

	var buf bytes.Buffer
	require.NoError(t, ErrorPage(http.StatusNotFound, "project not found").Render(ctx, &buf))

	out := buf.String()
	assert.Contains(t, out, `href="/dashboard"`)
	assert.Contains(t, out, "AS")
}
