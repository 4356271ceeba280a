// Package blog собирает ленты публикаций и выполняет изменения
// публикаций и комментариев с проверкой видимости и авторства.
//
// Зритель передается явно в каждый вызов; nil означает анонима.
package blog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/policy"
	"github.com/UkralStul/blogicum/internal/storage"
)

// DefaultPageSize - число публикаций на странице ленты.
const DefaultPageSize = 10

// Service - сервис ленты и публикаций.
type Service struct {
	store    storage.Storage
	clock    clock.Clock
	pageSize int
}

// New создает сервис. pageSize <= 0 означает DefaultPageSize.
func New(store storage.Storage, clk clock.Clock, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{store: store, clock: clk, pageSize: pageSize}
}

// Page - страница ленты.
type Page struct {
	Posts    []*domain.Post
	Number   int
	NumPages int
	Total    int64
}

// HasPrevious - есть ли страница до текущей.
func (p *Page) HasPrevious() bool { return p.Number > 1 }

// HasNext - есть ли страница после текущей.
func (p *Page) HasNext() bool { return p.Number < p.NumPages }

// Previous - номер предыдущей страницы.
func (p *Page) Previous() int { return p.Number - 1 }

// Next - номер следующей страницы.
func (p *Page) Next() int { return p.Number + 1 }

// Detail - публикация с комментариями.
type Detail struct {
	Post     *domain.Post
	Comments []*domain.Comment
	// CanEdit - зритель является автором.
	CanEdit bool
}

// Feed - главная лента: только видимые всем публикации.
func (s *Service) Feed(ctx context.Context, viewer *domain.User, page string) (*Page, error) {
	return s.paginate(ctx, s.publicFilter(), page)
}

// CategoryFeed - лента опубликованной категории. Неопубликованная или
// несуществующая категория дает ErrNotFound.
func (s *Service) CategoryFeed(ctx context.Context, viewer *domain.User, slug, page string) (*domain.Category, *Page, error) {
	category, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !category.IsPublished {
		return nil, nil, fmt.Errorf("category %q: %w", slug, domain.ErrNotFound)
	}

	filter := s.publicFilter()
	filter.CategoryID = &category.ID
	p, err := s.paginate(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}
	return category, p, nil
}

// ProfileFeed - публикации автора. Сам автор видит все свои публикации,
// остальные - только видимые всем.
func (s *Service) ProfileFeed(ctx context.Context, viewer *domain.User, username, page string) (*domain.User, *Page, error) {
	profile, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	filter := storage.PostFilter{}
	if viewer == nil || viewer.ID != profile.ID {
		filter = s.publicFilter()
	}
	filter.AuthorID = &profile.ID

	p, err := s.paginate(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}
	return profile, p, nil
}

// Detail - публикация с комментариями. Скрытая от зрителя публикация
// неотличима от несуществующей.
func (s *Service) Detail(ctx context.Context, viewer *domain.User, postID uint) (*Detail, error) {
	post, err := s.visiblePost(ctx, viewer, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("load comments of post %d: %w", post.ID, err)
	}
	return &Detail{
		Post:     post,
		Comments: comments,
		CanEdit:  policy.CanMutate(post, viewer),
	}, nil
}

func (s *Service) publicFilter() storage.PostFilter {
	now := s.clock.Now()
	return storage.PostFilter{PublicAt: &now}
}

// visiblePost загружает публикацию и применяет политику видимости.
func (s *Service) visiblePost(ctx context.Context, viewer *domain.User, postID uint) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !policy.IsVisible(post, viewer, s.clock.Now()) {
		return nil, fmt.Errorf("post %d: %w", postID, domain.ErrNotFound)
	}
	return post, nil
}

// ParsePage разбирает параметр page: пусто - первая страница, "last" -
// последняя, иначе положительное целое.
func ParsePage(raw string) (n int, last bool, err error) {
	switch raw {
	case "":
		return 1, false, nil
	case "last":
		return 0, true, nil
	}
	n, err = strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false, fmt.Errorf("page %q: %w", raw, domain.ErrNotFound)
	}
	return n, false, nil
}

func (s *Service) paginate(ctx context.Context, filter storage.PostFilter, raw string) (*Page, error) {
	number, last, err := ParsePage(raw)
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	numPages := int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
	if numPages == 0 {
		// Пустая первая страница допустима.
		numPages = 1
	}
	if last {
		number = numPages
	}
	if number > numPages {
		return nil, fmt.Errorf("page %d of %d: %w", number, numPages, domain.ErrNotFound)
	}

	posts, err := s.store.ListPosts(ctx, filter, storage.Pagination{
		Limit:  s.pageSize,
		Offset: (number - 1) * s.pageSize,
	})
	if err != nil {
		return nil, err
	}
	return &Page{Posts: posts, Number: number, NumPages: numPages, Total: total}, nil
}

// authorize проверяет, что зритель вошел и является автором сущности.
func authorize(entity policy.Authored, viewer *domain.User) error {
	if viewer == nil {
		return domain.ErrUnauthenticated
	}
	if !policy.CanMutate(entity, viewer) {
		return domain.ErrPermissionDenied
	}
	return nil
}
