package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UkralStul/blogicum/internal/blog"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateData - данные для всех страниц.
type templateData struct {
	Viewer     *domain.User
	Page       *blog.Page
	Detail     *blog.Detail
	Category   *domain.Category
	Profile    *domain.User
	Post       *domain.Post
	Comment    *domain.Comment
	Categories []*domain.Category
	Locations  []*domain.Location
	Form       map[string]string
	Errors     map[string]string
	Action     string
	Next       string
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02.01.2006 15:04")
		},
		"mediaURL": func(name string) string {
			return strings.TrimSuffix(s.media.url, "/") + "/" + name
		},
		"markdown": renderMarkdown,
		"truncate": func(text string, n int) string {
			if utf8.RuneCountInString(text) <= n {
				return text
			}
			return string([]rune(text)[:n]) + "…"
		},
	}
}

// parseTemplates собирает каждую страницу вместе с базовым шаблоном и партиалами.
func (s *Server) parseTemplates() error {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return err
	}
	s.templates = make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		if name == "base" || name == "partials" {
			continue
		}
		t, err := template.New(name).Funcs(s.templateFuncs()).
			ParseFS(templateFS, "templates/base.html", "templates/partials.html", page)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		s.templates[name] = t
	}
	return nil
}

// render рендерит страницу во временный буфер и только потом пишет ответ.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data *templateData) {
	t, ok := s.templates[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("template %q not found", name))
		return
	}
	if data == nil {
		data = &templateData{}
	}
	if data.Viewer == nil {
		data.Viewer = session.For(r.Context())
	}

	buf := new(bytes.Buffer)
	if err := t.ExecuteTemplate(buf, "base", data); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
