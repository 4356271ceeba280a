package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/storage"
)

// ProfileInput - редактируемые поля профиля.
type ProfileInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
}

// EditProfile обновляет профиль текущего зрителя.
func (s *Service) EditProfile(ctx context.Context, viewer *domain.User, in ProfileInput) (*domain.User, error) {
	if viewer == nil {
		return nil, domain.ErrUnauthenticated
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	errs := domain.NewValidationError()
	if err := ValidateForm(errs, in); err != nil {
		return nil, err
	}
	if errs.Empty() {
		existing, err := s.store.GetUserByUsername(ctx, in.Username)
		switch {
		case err == nil && existing.ID != viewer.ID:
			errs.Add("username", "A user with that username already exists.")
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateUser(ctx, &domain.User{
		ID:        viewer.ID,
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		errs.Add("username", "A user with that username already exists.")
		return nil, errs
	}
	return updated, err
}
