// Package web - HTML-интерфейс блога поверх chi.
package web

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/UkralStul/blogicum/internal/auth"
	"github.com/UkralStul/blogicum/internal/blog"
	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/session"
	"github.com/UkralStul/blogicum/internal/storage"
)

// Deps - зависимости сервера.
type Deps struct {
	Store  storage.Storage
	Blog   *blog.Service
	Auth   *auth.Service
	Clock  clock.Clock
	Logger *slog.Logger
	Cookie session.Cookie
	Media  MediaOptions
}

// Server обслуживает HTML-страницы блога.
type Server struct {
	store     storage.Storage
	blog      *blog.Service
	auth      *auth.Service
	clock     clock.Clock
	logger    *slog.Logger
	cookie    session.Cookie
	media     mediaStore
	templates map[string]*template.Template
	router    chi.Router
}

// New собирает сервер и его маршруты.
func New(d Deps) (*Server, error) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	s := &Server{
		store:  d.Store,
		blog:   d.Blog,
		auth:   d.Auth,
		clock:  d.Clock,
		logger: d.Logger,
		cookie: d.Cookie,
		media:  newMediaStore(d.Media),
	}
	if err := s.parseTemplates(); err != nil {
		return nil, err
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })
	r.Use(session.Middleware(s.store, s.clock, s.cookie, s.logger))

	r.NotFound(s.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	r.Get("/", s.handleIndex)

	r.Route("/posts", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/create/", s.handlePostCreateForm)
			r.Post("/create/", s.handlePostCreate)
		})
		r.Route("/{postID}", func(r chi.Router) {
			r.Get("/", s.handlePostDetail)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/edit/", s.handlePostEditForm)
				r.Post("/edit/", s.handlePostEdit)
				r.Get("/delete/", s.handlePostDeleteForm)
				r.Post("/delete/", s.handlePostDelete)
				r.Post("/comment/", s.handleCommentAdd)
				r.Get("/edit_comment/{commentID}/", s.handleCommentEditForm)
				r.Post("/edit_comment/{commentID}/", s.handleCommentEdit)
				r.Get("/delete_comment/{commentID}/", s.handleCommentDeleteForm)
				r.Post("/delete_comment/{commentID}/", s.handleCommentDelete)
			})
		})
	})

	r.Route("/profile", func(r chi.Router) {
		// статический сегмент edit у chi приоритетнее параметра
		r.With(s.requireAuth).Get("/edit/", s.handleProfileEditForm)
		r.With(s.requireAuth).Post("/edit/", s.handleProfileEdit)
		r.Get("/{username}/", s.handleProfile)
	})

	r.Get("/category/{slug}/", s.handleCategory)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login/", s.handleLoginForm)
		r.Post("/login/", s.handleLogin)
		r.Post("/logout/", s.handleLogout)
		r.Get("/registration/", s.handleRegistrationForm)
		r.Post("/registration/", s.handleRegistration)
	})

	r.Get("/pages/about/", s.staticPage("about"))
	r.Get("/pages/rules/", s.staticPage("rules"))

	mediaPrefix := "/" + strings.Trim(s.media.url, "/")
	r.Handle(mediaPrefix+"/*", http.StripPrefix(mediaPrefix+"/", s.media.fileServer()))

	s.router = r
}

// requireAuth отправляет анонима на страницу входа с возвратом назад.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.For(r.Context()) == nil {
			s.redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger пишет одну строку на запрос через slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func (s *Server) staticPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, name, nil)
	}
}
