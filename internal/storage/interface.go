package storage

import (
	"context"
	"time"

	"github.com/UkralStul/blogicum/internal/domain"
)

// Pagination - аргументы для постраничной выборки.
type Pagination struct {
	Limit  int
	Offset int
}

// PostFilter описывает выборку публикаций.
type PostFilter struct {
	AuthorID   *uint
	CategoryID *uint
	// PublicAt включает фильтр видимости для постороннего зрителя:
	// опубликовано, категория пуста или опубликована, pub_date <= PublicAt.
	PublicAt *time.Time
}

// Storage определяет контракт для хранилищ.
//
// Списки публикаций всегда возвращаются вместе с автором, категорией,
// местоположением и числом комментариев, одним запросом на страницу.
type Storage interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	// DeleteUser удаляет пользователя вместе с его публикациями и комментариями.
	DeleteUser(ctx context.Context, id uint) error

	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, token string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategory(ctx context.Context, id uint) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	// DeleteCategory отвязывает публикации от категории, не удаляя их.
	DeleteCategory(ctx context.Context, id uint) error

	CreateLocation(ctx context.Context, location *domain.Location) (*domain.Location, error)
	GetLocation(ctx context.Context, id uint) (*domain.Location, error)
	ListLocations(ctx context.Context) ([]*domain.Location, error)
	// DeleteLocation отвязывает публикации от местоположения, не удаляя их.
	DeleteLocation(ctx context.Context, id uint) error

	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetPost(ctx context.Context, id uint) (*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// DeletePost удаляет публикацию вместе с комментариями.
	DeletePost(ctx context.Context, id uint) error
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	// ListPosts сортирует по pub_date по убыванию.
	ListPosts(ctx context.Context, filter PostFilter, args Pagination) ([]*domain.Post, error)

	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetComment(ctx context.Context, id uint) (*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	// ListComments возвращает комментарии с авторами по возрастанию created_at.
	ListComments(ctx context.Context, postID uint) ([]*domain.Comment, error)
}
