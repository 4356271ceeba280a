// Package session хранит текущего зрителя в контексте запроса.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/storage"
)

type contextKey string

const key = contextKey("viewer")

// Cookie - параметры cookie сессии.
type Cookie struct {
	Name   string
	Secure bool
}

// Middleware загружает пользователя по cookie сессии и кладет его в контекст.
// Без cookie, с неизвестным или просроченным токеном запрос идет анонимно.
func Middleware(store storage.Storage, clk clock.Clock, cookie Cookie, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookie.Name)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.GetSession(r.Context(), c.Value)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				cookie.Clear(w)
			case err != nil:
				logger.Error("load session", "error", err)
			case !sess.ExpiresAt.After(clk.Now()):
				if err := store.DeleteSession(r.Context(), sess.Token); err != nil {
					logger.Warn("delete expired session", "error", err)
				}
				cookie.Clear(w)
			case sess.User != nil:
				r = r.WithContext(WithViewer(r.Context(), sess.User))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithViewer возвращает контекст с пользователем.
func WithViewer(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, key, user)
}

// For извлекает зрителя из контекста. nil - аноним.
func For(ctx context.Context) *domain.User {
	user, _ := ctx.Value(key).(*domain.User)
	return user
}

// Token возвращает токен сессии из запроса.
func (c Cookie) Token(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Set устанавливает cookie с токеном сессии.
func (c Cookie) Set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear удаляет cookie сессии.
func (c Cookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
