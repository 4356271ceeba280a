package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/UkralStul/blogicum/internal/domain"
)

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "404", nil)
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusForbidden, "403", nil)
}

// serverError логирует причину и отдает страницу без подробностей.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)
	t, ok := s.templates["500"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = t.ExecuteTemplate(w, "base", &templateData{})
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/auth/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
}

// fail переводит ошибку сервиса в ответ. Отказ в правах здесь - 403;
// обработчики редактирования и удаления перехватывают его раньше.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.notFound(w, r)
	case errors.Is(err, domain.ErrUnauthenticated):
		s.redirectToLogin(w, r)
	case errors.Is(err, domain.ErrPermissionDenied):
		s.forbidden(w, r)
	default:
		s.serverError(w, r, err)
	}
}

// failEdit - мягкий отказ: не автор возвращается на страницу публикации.
func (s *Server) failEdit(w http.ResponseWriter, r *http.Request, postID uint, err error) {
	if errors.Is(err, domain.ErrPermissionDenied) {
		http.Redirect(w, r, postURL(postID), http.StatusSeeOther)
		return
	}
	s.fail(w, r, err)
}

// failDelete - жесткий отказ: не автор получает 404.
func (s *Server) failDelete(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrPermissionDenied) {
		s.notFound(w, r)
		return
	}
	s.fail(w, r, err)
}

// validationErrors извлекает ошибки формы, если это они.
func validationErrors(err error) (map[string]string, bool) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
