package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/policy"
	"github.com/UkralStul/blogicum/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
type Store struct {
	mu             sync.RWMutex
	clock          clock.Clock
	lastID         uint
	users          map[uint]*domain.User
	sessions       map[string]*domain.Session
	categories     map[uint]*domain.Category
	locations      map[uint]*domain.Location
	posts          map[uint]*domain.Post
	comments       map[uint]*domain.Comment
	commentsByPost map[uint][]uint // map[postID][]commentID
}

// New создает новый экземпляр in-memory хранилища.
func New(clk clock.Clock) *Store {
	return &Store{
		clock:          clk,
		users:          make(map[uint]*domain.User),
		sessions:       make(map[string]*domain.Session),
		categories:     make(map[uint]*domain.Category),
		locations:      make(map[uint]*domain.Location),
		posts:          make(map[uint]*domain.Post),
		comments:       make(map[uint]*domain.Comment),
		commentsByPost: make(map[uint][]uint),
	}
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) nextID() uint {
	s.lastID++
	return s.lastID
}

func notFound(kind string, id any) error {
	return fmt.Errorf("%s %v: %w", kind, id, domain.ErrNotFound)
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, fmt.Errorf("username %q: %w", user.Username, storage.ErrDuplicate)
		}
	}
	stored := *user
	stored.ID = s.nextID()
	stored.CreatedAt = s.clock.Now()
	s.users[stored.ID] = &stored
	*user = stored
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user", username)
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return nil, notFound("user", user.ID)
	}
	for _, u := range s.users {
		if u.ID != user.ID && u.Username == user.Username {
			return nil, fmt.Errorf("username %q: %w", user.Username, storage.ErrDuplicate)
		}
	}
	stored.Username = user.Username
	stored.Email = user.Email
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	if user.PasswordHash != "" {
		stored.PasswordHash = user.PasswordHash
	}
	cp := *stored
	return &cp, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return notFound("user", id)
	}
	for postID, p := range s.posts {
		if p.AuthorID == id {
			s.deletePostLocked(postID)
		}
	}
	for commentID, c := range s.comments {
		if c.AuthorID == id {
			s.deleteCommentLocked(commentID)
		}
	}
	for token, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, token)
		}
	}
	delete(s.users, id)
	return nil
}

// === Session Methods ===

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return notFound("user", session.UserID)
	}
	stored := *session
	stored.CreatedAt = s.clock.Now()
	s.sessions[stored.Token] = &stored
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, notFound("session", "token")
	}
	cp := *sess
	if u, ok := s.users[sess.UserID]; ok {
		user := *u
		cp.User = &user
	}
	return &cp, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for token, sess := range s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

// === Category & Location Methods ===

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Slug == category.Slug {
			return nil, fmt.Errorf("category slug %q: %w", category.Slug, storage.ErrDuplicate)
		}
	}
	stored := *category
	stored.ID = s.nextID()
	stored.CreatedAt = s.clock.Now()
	s.categories[stored.ID] = &stored
	*category = stored
	return category, nil
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFound("category", slug)
}

func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return notFound("category", id)
	}
	for _, p := range s.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateLocation(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *location
	stored.ID = s.nextID()
	stored.CreatedAt = s.clock.Now()
	s.locations[stored.ID] = &stored
	*location = stored
	return location, nil
}

func (s *Store) GetLocation(ctx context.Context, id uint) (*domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locations[id]
	if !ok {
		return nil, notFound("location", id)
	}
	cp := *l
	return &cp, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Location, 0, len(s.locations))
	for _, l := range s.locations {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) DeleteLocation(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[id]; !ok {
		return notFound("location", id)
	}
	for _, p := range s.posts {
		if p.LocationID != nil && *p.LocationID == id {
			p.LocationID = nil
		}
	}
	delete(s.locations, id)
	return nil
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.AuthorID]; !ok {
		return nil, notFound("user", post.AuthorID)
	}
	stored := *post
	stored.ID = s.nextID()
	stored.CreatedAt = s.clock.Now()
	stored.Author, stored.Category, stored.Location = nil, nil, nil
	stored.CommentCount = 0
	s.posts[stored.ID] = &stored
	return s.joinPost(&stored), nil
}

func (s *Store) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, notFound("post", id)
	}
	return s.joinPost(p), nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return nil, notFound("post", post.ID)
	}
	stored.Title = post.Title
	stored.Text = post.Text
	stored.Image = post.Image
	stored.PubDate = post.PubDate
	stored.IsPublished = post.IsPublished
	stored.CategoryID = post.CategoryID
	stored.LocationID = post.LocationID
	return s.joinPost(stored), nil
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return notFound("post", id)
	}
	s.deletePostLocked(id)
	return nil
}

func (s *Store) deletePostLocked(id uint) {
	for _, commentID := range s.commentsByPost[id] {
		delete(s.comments, commentID)
	}
	delete(s.commentsByPost, id)
	delete(s.posts, id)
}

func (s *Store) CountPosts(ctx context.Context, filter storage.PostFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.filterPosts(filter))), nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, args storage.Pagination) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.filterPosts(filter)
	sort.Slice(all, func(i, j int) bool {
		if all[i].PubDate.Equal(all[j].PubDate) {
			return all[i].ID > all[j].ID
		}
		return all[i].PubDate.After(all[j].PubDate)
	})

	start := args.Offset
	if start >= len(all) {
		return []*domain.Post{}, nil
	}
	end := len(all)
	if args.Limit > 0 && start+args.Limit < end {
		end = start + args.Limit
	}
	return all[start:end], nil
}

// filterPosts возвращает уже присоединенные копии публикаций.
func (s *Store) filterPosts(filter storage.PostFilter) []*domain.Post {
	out := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		joined := s.joinPost(p)
		if filter.PublicAt != nil && !policy.IsPublic(joined, *filter.PublicAt) {
			continue
		}
		out = append(out, joined)
	}
	return out
}

// joinPost собирает копию публикации с автором, категорией,
// местоположением и числом комментариев.
func (s *Store) joinPost(p *domain.Post) *domain.Post {
	cp := *p
	if u, ok := s.users[p.AuthorID]; ok {
		author := *u
		cp.Author = &author
	}
	if p.CategoryID != nil {
		if c, ok := s.categories[*p.CategoryID]; ok {
			category := *c
			cp.Category = &category
		}
	}
	if p.LocationID != nil {
		if l, ok := s.locations[*p.LocationID]; ok {
			location := *l
			cp.Location = &location
		}
	}
	cp.CommentCount = int64(len(s.commentsByPost[p.ID]))
	return &cp
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return nil, notFound("post", comment.PostID)
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return nil, notFound("user", comment.AuthorID)
	}

	stored := *comment
	stored.ID = s.nextID()
	stored.CreatedAt = s.clock.Now()
	stored.Post, stored.Author = nil, nil
	s.comments[stored.ID] = &stored
	s.commentsByPost[stored.PostID] = append(s.commentsByPost[stored.PostID], stored.ID)
	return s.joinComment(&stored), nil
}

func (s *Store) GetComment(ctx context.Context, id uint) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, notFound("comment", id)
	}
	return s.joinComment(c), nil
}

func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.comments[comment.ID]
	if !ok {
		return nil, notFound("comment", comment.ID)
	}
	stored.Text = comment.Text
	stored.IsPublished = comment.IsPublished
	return s.joinComment(stored), nil
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return notFound("comment", id)
	}
	s.deleteCommentLocked(id)
	return nil
}

func (s *Store) deleteCommentLocked(id uint) {
	c, ok := s.comments[id]
	if !ok {
		return
	}
	ids := s.commentsByPost[c.PostID]
	for i, cid := range ids {
		if cid == id {
			s.commentsByPost[c.PostID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	delete(s.comments, id)
}

func (s *Store) ListComments(ctx context.Context, postID uint) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.commentsByPost[postID]
	out := make([]*domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			out = append(out, s.joinComment(c))
		}
	}
	// Сортируем по времени создания, при равенстве - по ID
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) joinComment(c *domain.Comment) *domain.Comment {
	cp := *c
	if u, ok := s.users[c.AuthorID]; ok {
		author := *u
		cp.Author = &author
	}
	return &cp
}
