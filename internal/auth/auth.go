// Package auth - регистрация, вход и выход пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/blogicum/internal/blog"
	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/storage"
)

// DefaultSessionTTL - время жизни сессии.
const DefaultSessionTTL = 24 * time.Hour

// Service выполняет аутентификацию.
type Service struct {
	store storage.Storage
	clock clock.Clock
	ttl   time.Duration
	cost  int
}

// Option настраивает Service.
type Option func(*Service)

// WithSessionTTL задает время жизни сессии.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost задает стоимость хеширования. В тестах - bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// New создает сервис аутентификации.
func New(store storage.Storage, clk clock.Clock, opts ...Option) *Service {
	s := &Service{store: store, clock: clk, ttl: DefaultSessionTTL, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput - данные формы регистрации.
type RegisterInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Password1 string `form:"password1" validate:"min=8,bcrypt"`
	Password2 string `form:"password2" validate:"eqfield=Password1"`
}

// Register создает пользователя.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	username := in.Username

	errs := domain.NewValidationError()
	if err := blog.ValidateForm(errs, in); err != nil {
		return nil, err
	}
	if errs.Empty() {
		_, err := s.store.GetUserByUsername(ctx, username)
		switch {
		case err == nil:
			errs.Add("username", "A user with that username already exists.")
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password1), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, &domain.User{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, storage.ErrDuplicate) {
		errs.Add("username", "A user with that username already exists.")
		return nil, errs
	}
	return user, err
}

// Login проверяет пароль и открывает новую сессию.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	invalid := domain.NewValidationError()
	invalid.Add("__all__", "Please enter a correct username and password.")

	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	sess := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		User:      user,
		ExpiresAt: s.clock.Now().Add(s.ttl),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Logout закрывает сессию. Неизвестный токен не ошибка.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// PurgeExpired удаляет просроченные сессии.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.clock.Now())
}
