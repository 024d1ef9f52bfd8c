package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/web/session"
)

//go:embed templates
var templateFS embed.FS

// CSRFContextKey is where the CSRF middleware stores the form token.
const CSRFContextKey = "csrf"

// Page is the view model every template receives.
type Page struct {
	Title    string
	Identity *session.Identity
	CSRF     string
	Flashes  []string
	// Error is a banner shown above the content.
	Error string
	// Errors holds per-field messages keyed by form field name.
	Errors map[string]string
	Form   any
	Data   any
}

// Renderer renders the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"fieldError": func(errs map[string]string, field string) string { return errs[field] },
	"selected":   func(a, b any) bool { return fmt.Sprint(a) == fmt.Sprint(b) },
}

func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: list pages: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("render: clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	return r, nil
}

// Render implements echo.Renderer. data must be a Page or *Page; identity,
// CSRF token and pending flashes are filled in from the request.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("render: unknown page %q", name)
	}

	var page *Page
	switch v := data.(type) {
	case *Page:
		page = v
	case Page:
		page = &v
	default:
		page = &Page{Data: data}
	}
	if page.Identity == nil {
		page.Identity = session.IdentityFrom(c)
	}
	if tkn, ok := c.Get(CSRFContextKey).(string); ok {
		page.CSRF = tkn
	}
	page.Flashes = append(page.Flashes, popFlashes(c)...)
	if page.Errors == nil {
		page.Errors = map[string]string{}
	}

	return t.ExecuteTemplate(w, "layout", page)
}
