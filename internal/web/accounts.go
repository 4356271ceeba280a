package web

import (
	"net/http"

	"github.com/UkralStul/blogicum/internal/auth"
	"github.com/UkralStul/blogicum/internal/blog"
	"github.com/UkralStul/blogicum/internal/session"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", &templateData{Next: safeNext(r.URL.Query().Get("next"))})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	next := safeNext(r.PostFormValue("next"))

	sess, err := s.auth.Login(r.Context(), username, r.PostFormValue("password"))
	if fields, invalid := validationErrors(err); invalid {
		s.render(w, r, http.StatusBadRequest, "login", &templateData{
			Form:   map[string]string{"username": username},
			Errors: fields,
			Next:   next,
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.cookie.Set(w, sess.Token, sess.ExpiresAt)
	s.logger.Info("user logged in", "user_id", sess.UserID)
	if next == "" {
		next = profileURL(sess.User.Username)
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), s.cookie.Token(r)); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.cookie.Clear(w)
	r = r.WithContext(session.WithViewer(r.Context(), nil))
	s.render(w, r, http.StatusOK, "logged_out", nil)
}

func (s *Server) handleRegistrationForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "registration", nil)
}

func (s *Server) handleRegistration(w http.ResponseWriter, r *http.Request) {
	in := auth.RegisterInput{
		Username:  r.PostFormValue("username"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
	user, err := s.auth.Register(r.Context(), in)
	if fields, invalid := validationErrors(err); invalid {
		s.render(w, r, http.StatusBadRequest, "registration", &templateData{
			Form:   map[string]string{"username": in.Username},
			Errors: fields,
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.logger.Info("user registered", "user_id", user.ID)
	http.Redirect(w, r, "/auth/login/", http.StatusSeeOther)
}

func (s *Server) handleProfileEditForm(w http.ResponseWriter, r *http.Request) {
	viewer := session.For(r.Context())
	s.render(w, r, http.StatusOK, "user", &templateData{Form: map[string]string{
		"username":   viewer.Username,
		"email":      viewer.Email,
		"first_name": viewer.FirstName,
		"last_name":  viewer.LastName,
	}})
}

func (s *Server) handleProfileEdit(w http.ResponseWriter, r *http.Request) {
	in := blog.ProfileInput{
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
	}
	user, err := s.blog.EditProfile(r.Context(), session.For(r.Context()), in)
	if fields, invalid := validationErrors(err); invalid {
		s.render(w, r, http.StatusBadRequest, "user", &templateData{
			Form: map[string]string{
				"username":   in.Username,
				"email":      in.Email,
				"first_name": in.FirstName,
				"last_name":  in.LastName,
			},
			Errors: fields,
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, profileURL(user.Username), http.StatusSeeOther)
}
