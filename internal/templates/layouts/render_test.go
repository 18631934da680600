package layouts

import (
	"bytes"
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"hello.html": {Data: []byte(
		`{{define "title"}}Hello{{end}}{{define "content"}}<p>{{.Data}}</p><i>{{.Layout.CSRFToken}}</i>{{end}}` +
			`{{define "fragment"}}<b>{{.Data}}</b>{{end}}` +
			`{{define "count"}}{{.Data}} {{plural .Data "note" "notes"}}{{end}}`,
	)},
}

func TestPage_RendersInsideBase(t *testing.T) {
	p := MustParsePages(testFS, "hello.html")
	ctx := SetCSRFToken(context.Background(), "tok123")

	var buf bytes.Buffer
	require.NoError(t, p.Page("hello", "<world>").Render(ctx, &buf))

	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>Hello</title>")
	assert.Contains(t, out, "<p>&lt;world&gt;</p>")
	assert.Contains(t, out, "<i>tok123</i>")
}

func TestPartial_SkipsBase(t *testing.T) {
	p := MustParsePages(testFS, "hello.html")

	html, err := HTML(context.Background(), p.Partial("hello", "fragment", "x"))
	require.NoError(t, err)
	assert.Equal(t, "<b>x</b>", string(html))
}

func TestPage_Unknown(t *testing.T) {
	p := MustParsePages(testFS, "hello.html")
	var buf bytes.Buffer
	assert.Error(t, p.Page("missing", nil).Render(context.Background(), &buf))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AS", initials("alice smith"))
	assert.Equal(t, "B", initials("Bob"))
	assert.Equal(t, "JR", initials("J R R Tolkien"))
	assert.Equal(t, "", initials(""))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "member", Plural(1, "member", "members"))
	assert.Equal(t, "members", Plural(0, "member", "members"))
	assert.Equal(t, "members", Plural(2, "member", "members"))

	p := MustParsePages(testFS, "hello.html")
	for n, want := range map[int]string{1: "1 note", 3: "3 notes"} {
		html, err := HTML(context.Background(), p.Partial("hello", "count", n))
		require.NoError(t, err)
		assert.Equal(t, want, string(html))
	}
}
