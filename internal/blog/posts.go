package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UkralStul/blogicum/internal/domain"
)

// PostInput - данные формы публикации.
type PostInput struct {
	Title       string `form:"title" validate:"notblank,max=256"`
	Text        string `form:"text" validate:"notblank"`
	PubDate     string `form:"pub_date" validate:"notblank"`
	CategoryID  string `form:"category" validate:"notblank"`
	LocationID  string `form:"location"`
	IsPublished bool   `form:"is_published"`
	// Image - путь уже сохраненного файла. Пусто - оставить прежний.
	Image      string `form:"-"`
	ClearImage bool   `form:"-"`
}

// FromPost заполняет форму значениями существующей публикации.
func FromPost(p *domain.Post) PostInput {
	in := PostInput{
		Title:       p.Title,
		Text:        p.Text,
		PubDate:     FormatPubDate(p.PubDate),
		IsPublished: p.IsPublished,
		Image:       p.Image,
	}
	if p.CategoryID != nil {
		in.CategoryID = fmt.Sprint(*p.CategoryID)
	}
	if p.LocationID != nil {
		in.LocationID = fmt.Sprint(*p.LocationID)
	}
	return in
}

// apply проверяет форму и переносит значения в публикацию.
func (s *Service) apply(ctx context.Context, in PostInput, post *domain.Post) error {
	in.Title = strings.TrimSpace(in.Title)
	errs := domain.NewValidationError()
	if err := ValidateForm(errs, in); err != nil {
		return err
	}

	var pubDate time.Time
	if _, ok := errs.Fields["pub_date"]; !ok {
		var err error
		if pubDate, err = ParsePubDate(in.PubDate); err != nil {
			errs.Add("pub_date", "Enter a valid date/time.")
		}
	}

	var categoryID *uint
	if _, ok := errs.Fields["category"]; !ok {
		var err error
		categoryID, err = parseOptionalID(in.CategoryID)
		if err != nil {
			errs.Add("category", "Select a valid choice.")
		} else if _, err := s.store.GetCategory(ctx, *categoryID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			errs.Add("category", "Select a valid choice.")
		}
	}

	locationID, err := parseOptionalID(in.LocationID)
	if err != nil {
		errs.Add("location", "Select a valid choice.")
	} else if locationID != nil {
		if _, err := s.store.GetLocation(ctx, *locationID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			errs.Add("location", "Select a valid choice.")
		}
	}

	if err := errs.OrNil(); err != nil {
		return err
	}

	post.Title = in.Title
	post.Text = in.Text
	post.PubDate = pubDate
	post.IsPublished = in.IsPublished
	post.CategoryID = categoryID
	post.LocationID = locationID
	switch {
	case in.Image != "":
		post.Image = in.Image
	case in.ClearImage:
		post.Image = ""
	}
	return nil
}

// CreatePost создает публикацию от имени зрителя.
func (s *Service) CreatePost(ctx context.Context, viewer *domain.User, in PostInput) (*domain.Post, error) {
	if viewer == nil {
		return nil, domain.ErrUnauthenticated
	}
	post := &domain.Post{AuthorID: viewer.ID}
	if err := s.apply(ctx, in, post); err != nil {
		return nil, err
	}
	return s.store.CreatePost(ctx, post)
}

// PostForEdit возвращает публикацию, если зритель может ее изменять.
// Скрытая от зрителя публикация дает ErrNotFound раньше проверки авторства.
func (s *Service) PostForEdit(ctx context.Context, viewer *domain.User, postID uint) (*domain.Post, error) {
	post, err := s.visiblePost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(post, viewer); err != nil {
		return nil, err
	}
	return post, nil
}

// EditPost изменяет публикацию. Только автор.
func (s *Service) EditPost(ctx context.Context, viewer *domain.User, postID uint, in PostInput) (*domain.Post, error) {
	post, err := s.PostForEdit(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, in, post); err != nil {
		return nil, err
	}
	return s.store.UpdatePost(ctx, post)
}

// DeletePost удаляет публикацию вместе с комментариями. Только автор.
func (s *Service) DeletePost(ctx context.Context, viewer *domain.User, postID uint) error {
	post, err := s.PostForEdit(ctx, viewer, postID)
	if err != nil {
		return err
	}
	return s.store.DeletePost(ctx, post.ID)
}

// Choices - справочники для формы публикации.
func (s *Service) Choices(ctx context.Context) ([]*domain.Category, []*domain.Location, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	locations, err := s.store.ListLocations(ctx)
	if err != nil {
		return nil, nil, err
	}
	return categories, locations, nil
}
