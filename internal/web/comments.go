package web

import (
	"net/http"

	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/session"
)

// commentIDs читает postID и commentID из маршрута.
func commentIDs(r *http.Request) (postID, commentID uint, ok bool) {
	if postID, ok = idParam(r, "postID"); !ok {
		return 0, 0, false
	}
	if commentID, ok = idParam(r, "commentID"); !ok {
		return 0, 0, false
	}
	return postID, commentID, true
}

func (s *Server) handleCommentAdd(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "postID")
	if !ok {
		s.notFound(w, r)
		return
	}
	viewer := session.For(r.Context())
	text := r.PostFormValue("text")
	_, err := s.blog.AddComment(r.Context(), viewer, postID, text)
	if fields, invalid := validationErrors(err); invalid {
		detail, derr := s.blog.Detail(r.Context(), viewer, postID)
		if derr != nil {
			s.fail(w, r, derr)
			return
		}
		s.render(w, r, http.StatusBadRequest, "detail", &templateData{
			Detail: detail,
			Form:   map[string]string{"text": text},
			Errors: fields,
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, postURL(postID), http.StatusSeeOther)
}

func (s *Server) handleCommentEditForm(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	comment, err := s.blog.CommentForEdit(r.Context(), session.For(r.Context()), postID, commentID)
	if err != nil {
		s.failEdit(w, r, postID, err)
		return
	}
	s.render(w, r, http.StatusOK, "comment_form", &templateData{
		Comment: comment,
		Form:    map[string]string{"text": comment.Text},
	})
}

func (s *Server) handleCommentEdit(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	text := r.PostFormValue("text")
	_, err := s.blog.EditComment(r.Context(), session.For(r.Context()), postID, commentID, text)
	if fields, invalid := validationErrors(err); invalid {
		s.render(w, r, http.StatusBadRequest, "comment_form", &templateData{
			Comment: &domain.Comment{ID: commentID, PostID: postID},
			Form:    map[string]string{"text": text},
			Errors:  fields,
		})
		return
	}
	if err != nil {
		s.failEdit(w, r, postID, err)
		return
	}
	http.Redirect(w, r, postURL(postID), http.StatusSeeOther)
}

func (s *Server) handleCommentDeleteForm(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	comment, err := s.blog.CommentForEdit(r.Context(), session.For(r.Context()), postID, commentID)
	if err != nil {
		s.failDelete(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "comment_delete", &templateData{Comment: comment})
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	postID, commentID, ok := commentIDs(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	if err := s.blog.DeleteComment(r.Context(), session.For(r.Context()), postID, commentID); err != nil {
		s.failDelete(w, r, err)
		return
	}
	http.Redirect(w, r, postURL(postID), http.StatusSeeOther)
}
