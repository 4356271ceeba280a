package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/UkralStul/blogicum/internal/blog"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/session"
)

const tooLargeMessage = "The uploaded file is too large."

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// idParam читает числовой параметр маршрута. Некорректное значение - 404.
func idParam(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.blog.Feed(r.Context(), session.For(r.Context()), r.URL.Query().Get("page"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index", &templateData{Page: page})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	cat, page, err := s.blog.CategoryFeed(r.Context(), session.For(r.Context()),
		chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "category", &templateData{Category: cat, Page: page})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, page, err := s.blog.ProfileFeed(r.Context(), session.For(r.Context()),
		chi.URLParam(r, "username"), r.URL.Query().Get("page"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "profile", &templateData{Profile: user, Page: page})
}

func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}
	detail, err := s.blog.Detail(r.Context(), session.For(r.Context()), postID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "detail", &templateData{Detail: detail})
}

// postForm переводит данные формы публикации в значения полей шаблона.
func postForm(in blog.PostInput) map[string]string {
	form := map[string]string{
		"title":    in.Title,
		"text":     in.Text,
		"pub_date": in.PubDate,
		"category": in.CategoryID,
		"location": in.LocationID,
		"image":    in.Image,
	}
	if in.IsPublished {
		form["is_published"] = "on"
	}
	return form
}

// renderPostForm показывает форму создания или редактирования.
func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, status int, post *domain.Post, in blog.PostInput, errs map[string]string) {
	categories, locations, err := s.blog.Choices(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	action := "/posts/create/"
	if post != nil {
		action = postURL(post.ID) + "edit/"
	}
	s.render(w, r, status, "post_form", &templateData{
		Post:       post,
		Categories: categories,
		Locations:  locations,
		Form:       postForm(in),
		Errors:     errs,
		Action:     action,
	})
}

// readPostInput разбирает multipart-форму и сохраняет изображение, если оно есть.
// Сохраненный файл возвращается в in.Image; при ошибке формы его надо удалить.
func (s *Server) readPostInput(w http.ResponseWriter, r *http.Request) (blog.PostInput, error) {
	// тело ограничено лимитом файла плюс 1 МиБ на остальные поля;
	// сам файл проверяется по размеру из заголовка части
	r.Body = http.MaxBytesReader(w, r.Body, s.media.maxSize+1<<20)
	var in blog.PostInput
	if err := r.ParseMultipartForm(s.media.maxSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errs := domain.NewValidationError()
			errs.Add("image", tooLargeMessage)
			return in, errs
		}
		return in, err
	}

	in = blog.PostInput{
		Title:       r.PostFormValue("title"),
		Text:        r.PostFormValue("text"),
		PubDate:     r.PostFormValue("pub_date"),
		CategoryID:  r.PostFormValue("category"),
		LocationID:  r.PostFormValue("location"),
		IsPublished: r.PostFormValue("is_published") != "",
		ClearImage:  r.PostFormValue("image-clear") != "",
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return in, err
	}
	defer file.Close()

	if header.Size > s.media.maxSize {
		errs := domain.NewValidationError()
		errs.Add("image", tooLargeMessage)
		return in, errs
	}

	name, err := s.media.save(file)
	if errors.Is(err, errNotImage) {
		errs := domain.NewValidationError()
		errs.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		return in, errs
	}
	if err != nil {
		return in, err
	}
	in.Image = name
	return in, nil
}

func (s *Server) handlePostCreateForm(w http.ResponseWriter, r *http.Request) {
	in := blog.PostInput{PubDate: blog.FormatPubDate(s.clock.Now()), IsPublished: true}
	s.renderPostForm(w, r, http.StatusOK, nil, in, nil)
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	viewer := session.For(r.Context())
	in, err := s.readPostInput(w, r)
	if err == nil {
		_, err = s.blog.CreatePost(r.Context(), viewer, in)
	}
	if err != nil {
		s.discard(r, in.Image)
		if fields, ok := validationErrors(err); ok {
			in.Image = ""
			s.renderPostForm(w, r, http.StatusBadRequest, nil, in, fields)
			return
		}
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, profileURL(viewer.Username), http.StatusSeeOther)
}

func (s *Server) handlePostEditForm(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}
	post, err := s.blog.PostForEdit(r.Context(), session.For(r.Context()), postID)
	if err != nil {
		s.failEdit(w, r, postID, err)
		return
	}
	s.renderPostForm(w, r, http.StatusOK, post, blog.FromPost(post), nil)
}

func (s *Server) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}
	viewer := session.For(r.Context())
	// проверяем права до разбора формы, чтобы не сохранять чужие файлы
	post, err := s.blog.PostForEdit(r.Context(), viewer, postID)
	if err != nil {
		s.failEdit(w, r, postID, err)
		return
	}

	in, err := s.readPostInput(w, r)
	if err == nil {
		_, err = s.blog.EditPost(r.Context(), viewer, postID, in)
	}
	if err != nil {
		s.discard(r, in.Image)
		if fields, ok := validationErrors(err); ok {
			in.Image = post.Image
			s.renderPostForm(w, r, http.StatusBadRequest, post, in, fields)
			return
		}
		s.failEdit(w, r, postID, err)
		return
	}
	if post.Image != "" && (in.Image != "" || in.ClearImage) {
		s.discard(r, post.Image)
	}
	http.Redirect(w, r, postURL(postID), http.StatusSeeOther)
}

func (s *Server) handlePostDeleteForm(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}
	post, err := s.blog.PostForEdit(r.Context(), session.For(r.Context()), postID)
	if err != nil {
		s.failDelete(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "post_delete", &templateData{Post: post})
}

func (s *Server) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}
	viewer := session.For(r.Context())
	post, err := s.blog.PostForEdit(r.Context(), viewer, postID)
	if err == nil {
		err = s.blog.DeletePost(r.Context(), viewer, postID)
	}
	if err != nil {
		s.failDelete(w, r, err)
		return
	}
	s.discard(r, post.Image)
	http.Redirect(w, r, profileURL(viewer.Username), http.StatusSeeOther)
}

// discard удаляет файл изображения, ошибку только логирует.
func (s *Server) discard(r *http.Request, name string) {
	if name == "" {
		return
	}
	if err := s.media.remove(name); err != nil {
		s.logger.Warn("remove media file", "file", name, "error", err)
	}
}

// safeNext допускает только локальные пути, чтобы вход не уводил на чужой сайт.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
