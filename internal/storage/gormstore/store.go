// Package gormstore реализует Storage поверх gorm (PostgreSQL или SQLite).
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage с использованием реляционной БД.
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// Options - параметры подключения.
type Options struct {
	// Debug включает логирование всех SQL-запросов.
	Debug bool
	Clock clock.Clock
}

func gormConfig(opts Options) *gorm.Config {
	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		NowFunc:        clk.Now,
		TranslateError: true,
	}
}

// OpenPostgres создает хранилище PostgreSQL.
func OpenPostgres(dsn string, opts Options) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// OpenSQLite создает хранилище SQLite. Подходит для разработки и тестов.
func OpenSQLite(dsn string, opts Options) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite не любит конкурентную запись
	sqlDB.SetMaxOpenConns(1)
	return New(db)
}

// New выполняет миграцию схемы и оборачивает соединение.
func New(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Category{},
		&domain.Location{},
		&domain.Post{},
		&domain.Comment{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error, kind string, key any) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %v: %w", kind, key, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s %v: %w", kind, key, storage.ErrDuplicate)
	}
	return fmt.Errorf("%s %v: %w", kind, key, err)
}

// mustAffect превращает удаление/обновление без затронутых строк в ErrNotFound.
func mustAffect(res *gorm.DB, kind string, key any) error {
	if res.Error != nil {
		return translate(res.Error, kind, key)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, kind, key)
	}
	return nil
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, translate(err, "user", user.Username)
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, translate(err, "user", id)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, translate(err, "user", username)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	fields := map[string]any{
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	}
	if user.PasswordHash != "" {
		fields["password_hash"] = user.PasswordHash
	}
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).Updates(fields)
	if err := mustAffect(res, "user", user.ID); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, user.ID)
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&domain.Post{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("author_id = ? OR post_id IN (?)", id, authored).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&domain.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		return mustAffect(tx.Where("id = ?", id).Delete(&domain.User{}), "user", id)
	})
}

// === Session Methods ===

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error; err != nil {
		return translate(err, "session", session.UserID)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.WithContext(ctx).Joins("User").Where("sessions.token = ?", token).Take(&session).Error
	if err != nil {
		return nil, translate(err, "session", "token")
	}
	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{}).Error
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}

// === Category & Location Methods ===

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, translate(err, "category", category.Slug)
	}
	return category, nil
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&category).Error; err != nil {
		return nil, translate(err, "category", id)
	}
	return &category, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).Take(&category).Error; err != nil {
		return nil, translate(err, "category", slug)
	}
	return &category, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	err := s.db.WithContext(ctx).Order("title ASC").Find(&categories).Error
	return categories, err
}

func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Post{}).Where("category_id = ?", id).
			Update("category_id", gorm.Expr("NULL")).Error
		if err != nil {
			return err
		}
		return mustAffect(tx.Where("id = ?", id).Delete(&domain.Category{}), "category", id)
	})
}

func (s *Store) CreateLocation(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	if err := s.db.WithContext(ctx).Create(location).Error; err != nil {
		return nil, translate(err, "location", location.Name)
	}
	return location, nil
}

func (s *Store) GetLocation(ctx context.Context, id uint) (*domain.Location, error) {
	var location domain.Location
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&location).Error; err != nil {
		return nil, translate(err, "location", id)
	}
	return &location, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	var locations []*domain.Location
	err := s.db.WithContext(ctx).Order("name ASC").Find(&locations).Error
	return locations, err
}

func (s *Store) DeleteLocation(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Post{}).Where("location_id = ?", id).
			Update("location_id", gorm.Expr("NULL")).Error
		if err != nil {
			return err
		}
		return mustAffect(tx.Where("id = ?", id).Delete(&domain.Location{}), "location", id)
	})
}

// === Post Methods ===

// postColumns - все поля публикации плюс аннотация числа комментариев.
const postColumns = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// posts - базовый запрос: одна выборка с автором, категорией и местоположением.
func (s *Store) posts(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&domain.Post{}).
		Select(postColumns).
		Joins("Author").
		Joins("Category").
		Joins("Location")
}

func (s *Store) applyFilter(q *gorm.DB, filter storage.PostFilter) *gorm.DB {
	if filter.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *filter.AuthorID)
	}
	if filter.CategoryID != nil {
		q = q.Where("posts.category_id = ?", *filter.CategoryID)
	}
	if filter.PublicAt != nil {
		published := s.db.Model(&domain.Category{}).Select("id").Where("is_published = ?", true)
		q = q.Where("posts.is_published = ? AND posts.pub_date <= ?", true, *filter.PublicAt).
			Where("(posts.category_id IS NULL OR posts.category_id IN (?))", published)
	}
	return q
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, translate(err, "post", post.Title)
	}
	return s.GetPost(ctx, post.ID)
}

func (s *Store) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	var post domain.Post
	if err := s.posts(ctx).Where("posts.id = ?", id).Take(&post).Error; err != nil {
		return nil, translate(err, "post", id)
	}
	return &post, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	fields := map[string]any{
		"title":        post.Title,
		"text":         post.Text,
		"image":        post.Image,
		"pub_date":     post.PubDate,
		"is_published": post.IsPublished,
		"category_id":  post.CategoryID,
		"location_id":  post.LocationID,
	}
	res := s.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", post.ID).Updates(fields)
	if err := mustAffect(res, "post", post.ID); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, post.ID)
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		return mustAffect(tx.Where("id = ?", id).Delete(&domain.Post{}), "post", id)
	})
}

func (s *Store) CountPosts(ctx context.Context, filter storage.PostFilter) (int64, error) {
	var n int64
	q := s.applyFilter(s.db.WithContext(ctx).Model(&domain.Post{}), filter)
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, args storage.Pagination) ([]*domain.Post, error) {
	q := s.applyFilter(s.posts(ctx), filter).
		Order("posts.pub_date DESC").
		Order("posts.id DESC")
	if args.Limit > 0 {
		q = q.Limit(args.Limit)
	}
	if args.Offset > 0 {
		q = q.Offset(args.Offset)
	}

	var posts []*domain.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, translate(err, "comment", comment.PostID)
	}
	return s.GetComment(ctx, comment.ID)
}

func (s *Store) GetComment(ctx context.Context, id uint) (*domain.Comment, error) {
	var comment domain.Comment
	if err := s.db.WithContext(ctx).Joins("Author").Where("comments.id = ?", id).Take(&comment).Error; err != nil {
		return nil, translate(err, "comment", id)
	}
	return &comment, nil
}

func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	fields := map[string]any{
		"text":         comment.Text,
		"is_published": comment.IsPublished,
	}
	res := s.db.WithContext(ctx).Model(&domain.Comment{}).Where("id = ?", comment.ID).Updates(fields)
	if err := mustAffect(res, "comment", comment.ID); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, comment.ID)
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	return mustAffect(s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{}), "comment", id)
}

func (s *Store) ListComments(ctx context.Context, postID uint) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.db.WithContext(ctx).
		Joins("Author").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").
		Order("comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
