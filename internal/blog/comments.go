package blog

import (
	"context"
	"fmt"

	"github.com/UkralStul/blogicum/internal/domain"
)

// CommentInput - данные формы комментария.
type CommentInput struct {
	Text string `form:"text" validate:"notblank"`
}

func validateComment(text string) error {
	errs := domain.NewValidationError()
	if err := ValidateForm(errs, CommentInput{Text: text}); err != nil {
		return err
	}
	return errs.OrNil()
}

// AddComment добавляет комментарий к видимой зрителю публикации.
func (s *Service) AddComment(ctx context.Context, viewer *domain.User, postID uint, text string) (*domain.Comment, error) {
	if viewer == nil {
		return nil, domain.ErrUnauthenticated
	}
	post, err := s.visiblePost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	if err := validateComment(text); err != nil {
		return nil, err
	}
	return s.store.CreateComment(ctx, &domain.Comment{
		PostID:      post.ID,
		AuthorID:    viewer.ID,
		Text:        text,
		IsPublished: true,
	})
}

// CommentForEdit возвращает комментарий публикации postID, если зритель
// его автор. Комментарий другой или скрытой от зрителя публикации
// считается несуществующим.
func (s *Service) CommentForEdit(ctx context.Context, viewer *domain.User, postID, commentID uint) (*domain.Comment, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, fmt.Errorf("comment %d of post %d: %w", commentID, postID, domain.ErrNotFound)
	}
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}
	if err := authorize(comment, viewer); err != nil {
		return nil, err
	}
	return comment, nil
}

// EditComment меняет текст комментария. Только автор.
func (s *Service) EditComment(ctx context.Context, viewer *domain.User, postID, commentID uint, text string) (*domain.Comment, error) {
	comment, err := s.CommentForEdit(ctx, viewer, postID, commentID)
	if err != nil {
		return nil, err
	}
	if err := validateComment(text); err != nil {
		return nil, err
	}
	comment.Text = text
	return s.store.UpdateComment(ctx, comment)
}

// DeleteComment удаляет комментарий. Только автор.
func (s *Service) DeleteComment(ctx context.Context, viewer *domain.User, postID, commentID uint) error {
	comment, err := s.CommentForEdit(ctx, viewer, postID, commentID)
	if err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, comment.ID)
}
