package layouts

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/a-h/templ"
)

//go:embed base.html
var baseHTML string

// View is the value every page template executes against.
type View struct {
	Layout Layout
	Data   any
}

// Pages is a set of page templates that all share the base layout. Each
// page is parsed into its own template tree so every page can define its
// own "title" and "content" blocks.
type Pages struct {
	pages map[string]*template.Template
}

// MustParsePages parses every named file from fsys on top of the base
// layout. The page name is the file name without its extension. It panics
// on template errors, which only happen at startup.
func MustParsePages(fsys fs.FS, files ...string) *Pages {
	base := template.Must(template.New("base").Funcs(Funcs()).Parse(baseHTML))
	p := &Pages{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t := template.Must(template.Must(base.Clone()).ParseFS(fsys, file))
		p.pages[strings.TrimSuffix(file, ".html")] = t
	}
	return p
}

// Page returns a component that renders the named page with data inside
// the base layout. Layout data is read from the render context.
func (p *Pages) Page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := p.pages[name]
		if !ok {
			return fmt.Errorf("unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "base", View{Layout: FromContext(ctx), Data: data})
	})
}

// Partial returns a component that renders one named block of a page
// without the base layout. Used for fragments embedded in other pages and
// for HTMX swaps.
func (p *Pages) Partial(page, block string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := p.pages[page]
		if !ok {
			return fmt.Errorf("unknown page %q", page)
		}
		return t.ExecuteTemplate(w, block, View{Layout: FromContext(ctx), Data: data})
	})
}

// HTML renders c into markup that a page template can embed as-is.
func HTML(ctx context.Context, c templ.Component) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Funcs are the helpers available to every page template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"datetime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"contains": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
		"initials": initials,
		"plural": Plural,
	}
}

// initials returns up to two uppercase initials for an avatar badge.
func initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			out = append(out, []rune(strings.ToUpper(string(r)))...)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// Plural picks one or many by n. Templates call it as plural.
func Plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
