// Package pages renders the HTML screens. Templates are plain html/template
// files adapted to templ components, so handlers render them with ui.Render
// like any other component.
package pages

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/greenflash/greenflash/internal/ctxkeys"
	"github.com/greenflash/greenflash/internal/model"
	"github.com/greenflash/greenflash/internal/ui"
	"github.com/greenflash/greenflash/internal/validation"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"mileage": formatMileage,
	"dict": func(kv ...any) map[string]any {
		m := make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[fmt.Sprint(kv[i])] = kv[i+1]
		}
		return m
	},
	"active": func(current, prefix string) bool {
		return current == prefix || strings.HasPrefix(current, prefix+"/")
	},
}

func formatMileage(m *int64) string {
	if m == nil {
		return ""
	}
	return fmt.Sprint(*m)
}

// sets holds one template set per page: the layout plus the page file.
var sets = map[string]*template.Template{}

func init() {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		panic(err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == "base.html" || name == "partials.html" {
			continue
		}
		sets[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/base.html",
			"templates/partials.html",
			"templates/"+name,
		))
	}
}

// Page carries what the layout needs on every screen.
type Page struct {
	Title     string
	AppName   string
	Path      string
	User      *model.User
	CSRFToken string
	Nonce     string
	Flashes   []ui.Flash
	Errors    validation.Errors
}

// New collects the per-request layout data. It consumes pending flashes, so
// call it only for a page that is about to be rendered.
func New(w http.ResponseWriter, r *http.Request, title string) *Page {
	ctx := r.Context()

	appName := "Greenflash"
	if cfg := ctxkeys.Config(ctx); cfg != nil && cfg.AppName != "" {
		appName = cfg.AppName
	}

	return &Page{
		Title:     title,
		AppName:   appName,
		Path:      ctxkeys.URLPath(ctx),
		User:      ctxkeys.User(ctx),
		CSRFToken: ctxkeys.CSRFToken(ctx),
		Nonce:     templ.GetNonce(ctx),
		Flashes:   ui.PopFlashes(w, r),
	}
}

// WithErrors attaches field errors when err is a validation failure.
func (p *Page) WithErrors(err error) *Page {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		p.Errors = verrs
	}
	return p
}

func render(name string, data any) templ.Component {
	set, ok := sets[name]
	if !ok {
		panic("unknown page template " + name)
	}
	return templ.FromGoHTML(set.Lookup("base"), data)
}
