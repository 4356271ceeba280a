// Package storagetest - общий набор проверок контракта storage.Storage.
// Каждая реализация прогоняет его в своем store_test.go.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Base - момент, на котором стоят часы в начале каждого теста.
var Base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Factory создает пустое хранилище, использующее переданные часы.
type Factory func(t *testing.T, clk clock.Clock) storage.Storage

// Run прогоняет все проверки контракта.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, f *fixture)
	}{
		{"CreateAndGetPost", testCreateAndGetPost},
		{"PublicFilter", testPublicFilter},
		{"FilterByCategoryAndAuthor", testFilterByCategoryAndAuthor},
		{"Pagination", testPagination},
		{"CommentCount", testCommentCount},
		{"CommentsOrdered", testCommentsOrdered},
		{"UpdatePostAndComment", testUpdatePostAndComment},
		{"DeleteCategoryDetaches", testDeleteCategoryDetaches},
		{"DeleteLocationDetaches", testDeleteLocationDetaches},
		{"DeletePostCascades", testDeletePostCascades},
		{"DeleteUserCascades", testDeleteUserCascades},
		{"Users", testUsers},
		{"Sessions", testSessions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.NewFake(Base)
			tt.fn(t, newFixture(t, newStore(t, clk), clk))
		})
	}
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  storage.Storage
	clock  *clock.Fake
	alice  *domain.User
	bob    *domain.User
	travel *domain.Category
	hidden *domain.Category
	moscow *domain.Location
}

func newFixture(t *testing.T, s storage.Storage, clk *clock.Fake) *fixture {
	f := &fixture{t: t, ctx: context.Background(), store: s, clock: clk}
	f.alice = f.user("alice")
	f.bob = f.user("bob")

	var err error
	f.travel, err = s.CreateCategory(f.ctx, &domain.Category{Title: "Путешествия", Description: "d", Slug: "travel", IsPublished: true})
	require.NoError(t, err)
	f.hidden, err = s.CreateCategory(f.ctx, &domain.Category{Title: "Новости", Description: "d", Slug: "news", IsPublished: false})
	require.NoError(t, err)
	f.moscow, err = s.CreateLocation(f.ctx, &domain.Location{Name: "Москва", IsPublished: true})
	require.NoError(t, err)
	return f
}

func (f *fixture) user(name string) *domain.User {
	u, err := f.store.CreateUser(f.ctx, &domain.User{Username: name, PasswordHash: "x"})
	require.NoError(f.t, err)
	return u
}

type postOpt func(p *domain.Post)

func inCategory(c *domain.Category) postOpt { return func(p *domain.Post) { p.CategoryID = &c.ID } }
func atLocation(l *domain.Location) postOpt { return func(p *domain.Post) { p.LocationID = &l.ID } }
func draft() postOpt                        { return func(p *domain.Post) { p.IsPublished = false } }
func by(u *domain.User) postOpt             { return func(p *domain.Post) { p.AuthorID = u.ID } }
func published(at time.Time) postOpt        { return func(p *domain.Post) { p.PubDate = at } }

func (f *fixture) post(title string, opts ...postOpt) *domain.Post {
	p := &domain.Post{
		Title:       title,
		Text:        "text of " + title,
		PubDate:     Base.Add(-time.Hour),
		IsPublished: true,
		AuthorID:    f.alice.ID,
	}
	for _, opt := range opts {
		opt(p)
	}
	created, err := f.store.CreatePost(f.ctx, p)
	require.NoError(f.t, err)
	return created
}

func (f *fixture) comment(post *domain.Post, author *domain.User, text string) *domain.Comment {
	c, err := f.store.CreateComment(f.ctx, &domain.Comment{PostID: post.ID, AuthorID: author.ID, Text: text, IsPublished: true})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) public() storage.PostFilter {
	now := f.clock.Now()
	return storage.PostFilter{PublicAt: &now}
}

func titles(posts []*domain.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func testCreateAndGetPost(t *testing.T, f *fixture) {
	created := f.post("Первый", inCategory(f.travel), atLocation(f.moscow))
	assert.NotZero(t, created.ID)

	got, err := f.store.GetPost(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Первый", got.Title)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)
	require.NotNil(t, got.Category)
	assert.Equal(t, "travel", got.Category.Slug)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Москва", got.Location.Name)
	assert.True(t, got.PubDate.Equal(Base.Add(-time.Hour)))
	assert.True(t, got.CreatedAt.Equal(Base))

	_, err = f.store.GetPost(f.ctx, created.ID+1000)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testPublicFilter(t *testing.T, f *fixture) {
	f.post("visible", inCategory(f.travel), published(Base.Add(-3*time.Hour)))
	f.post("no category", published(Base.Add(-2*time.Hour)))
	f.post("exactly now", inCategory(f.travel), published(Base))
	f.post("draft", inCategory(f.travel), draft())
	f.post("hidden category", inCategory(f.hidden))
	f.post("future", inCategory(f.travel), published(Base.Add(time.Hour)))

	posts, err := f.store.ListPosts(f.ctx, f.public(), storage.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, []string{"exactly now", "no category", "visible"}, titles(posts))

	n, err := f.store.CountPosts(f.ctx, f.public())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	all, err := f.store.ListPosts(f.ctx, storage.PostFilter{}, storage.Pagination{})
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, "future", all[0].Title)

	// Через час отложенная публикация становится видна.
	f.clock.Advance(time.Hour)
	posts, err = f.store.ListPosts(f.ctx, f.public(), storage.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, "future", posts[0].Title)
}

func testFilterByCategoryAndAuthor(t *testing.T, f *fixture) {
	f.post("alice travel", inCategory(f.travel))
	f.post("alice plain")
	f.post("bob travel", inCategory(f.travel), by(f.bob), published(Base.Add(-2*time.Hour)))
	f.post("bob draft", by(f.bob), draft())

	posts, err := f.store.ListPosts(f.ctx, storage.PostFilter{CategoryID: &f.travel.ID}, storage.Pagination{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice travel", "bob travel"}, titles(posts))

	posts, err = f.store.ListPosts(f.ctx, storage.PostFilter{AuthorID: &f.bob.ID}, storage.Pagination{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob travel", "bob draft"}, titles(posts))

	public := f.public()
	public.AuthorID = &f.bob.ID
	posts, err = f.store.ListPosts(f.ctx, public, storage.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob travel"}, titles(posts))
}

func testPagination(t *testing.T, f *fixture) {
	for i := 0; i < 23; i++ {
		f.post(fmt.Sprintf("post-%02d", i), published(Base.Add(-time.Duration(i+1)*time.Minute)))
	}

	all, err := f.store.ListPosts(f.ctx, f.public(), storage.Pagination{})
	require.NoError(t, err)
	require.Len(t, all, 23)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].PubDate.After(all[i-1].PubDate), "not ordered by pub_date desc")
	}

	var sizes []int
	for offset := 0; offset < 23; offset += 10 {
		page, err := f.store.ListPosts(f.ctx, f.public(), storage.Pagination{Limit: 10, Offset: offset})
		require.NoError(t, err)
		sizes = append(sizes, len(page))
		end := offset + 10
		if end > len(all) {
			end = len(all)
		}
		assert.Equal(t, titles(all[offset:end]), titles(page))
	}
	assert.Equal(t, []int{10, 10, 3}, sizes)

	empty, err := f.store.ListPosts(f.ctx, f.public(), storage.Pagination{Limit: 10, Offset: 30})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testCommentCount(t *testing.T, f *fixture) {
	first := f.post("first")
	second := f.post("second", published(Base.Add(-2*time.Hour)))
	f.comment(first, f.bob, "one")
	f.comment(first, f.alice, "two")
	f.comment(first, f.bob, "three")

	posts, err := f.store.ListPosts(f.ctx, f.public(), storage.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, first.ID, posts[0].ID)
	assert.EqualValues(t, 3, posts[0].CommentCount)
	assert.Equal(t, second.ID, posts[1].ID)
	assert.EqualValues(t, 0, posts[1].CommentCount)

	got, err := f.store.GetPost(f.ctx, first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.CommentCount)
}

func testCommentsOrdered(t *testing.T, f *fixture) {
	post := f.post("post")
	other := f.post("other")
	for _, text := range []string{"a", "b", "c"} {
		f.comment(post, f.bob, text)
		f.clock.Advance(time.Minute)
	}
	f.comment(other, f.bob, "elsewhere")

	comments, err := f.store.ListComments(f.ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, comments[i].Text)
		require.NotNil(t, comments[i].Author)
		assert.Equal(t, "bob", comments[i].Author.Username)
	}

	got, err := f.store.GetComment(f.ctx, comments[1].ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.PostID)

	_, err = f.store.GetComment(f.ctx, 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testUpdatePostAndComment(t *testing.T, f *fixture) {
	post := f.post("old", inCategory(f.travel), atLocation(f.moscow))
	post.Title = "new"
	post.IsPublished = false
	post.LocationID = nil
	post.CategoryID = &f.hidden.ID

	updated, err := f.store.UpdatePost(f.ctx, post)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.False(t, updated.IsPublished)
	assert.Nil(t, updated.LocationID)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "news", updated.Category.Slug)

	c := f.comment(post, f.bob, "typo")
	c.Text = "fixed"
	updatedComment, err := f.store.UpdateComment(f.ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "fixed", updatedComment.Text)

	_, err = f.store.UpdatePost(f.ctx, &domain.Post{ID: 99999, Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDeleteCategoryDetaches(t *testing.T, f *fixture) {
	ids := make([]uint, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, f.post(fmt.Sprintf("p%d", i), inCategory(f.travel)).ID)
	}

	require.NoError(t, f.store.DeleteCategory(f.ctx, f.travel.ID))

	for _, id := range ids {
		p, err := f.store.GetPost(f.ctx, id)
		require.NoError(t, err)
		assert.Nil(t, p.CategoryID)
		assert.Nil(t, p.Category)
	}
	_, err := f.store.GetCategoryBySlug(f.ctx, "travel")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.store.DeleteCategory(f.ctx, f.travel.ID), domain.ErrNotFound)
}

func testDeleteLocationDetaches(t *testing.T, f *fixture) {
	p := f.post("somewhere", atLocation(f.moscow))
	require.NoError(t, f.store.DeleteLocation(f.ctx, f.moscow.ID))

	got, err := f.store.GetPost(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LocationID)
	assert.Nil(t, got.Location)
}

func testDeletePostCascades(t *testing.T, f *fixture) {
	p := f.post("doomed")
	c := f.comment(p, f.bob, "bye")

	require.NoError(t, f.store.DeletePost(f.ctx, p.ID))

	_, err := f.store.GetPost(f.ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.GetComment(f.ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.store.DeletePost(f.ctx, p.ID), domain.ErrNotFound)
}

func testDeleteUserCascades(t *testing.T, f *fixture) {
	bobPost := f.post("bob's", by(f.bob))
	alicePost := f.post("alice's")
	onBobs := f.comment(bobPost, f.alice, "alice on bob's post")
	byBob := f.comment(alicePost, f.bob, "bob on alice's post")
	kept := f.comment(alicePost, f.alice, "alice on her own post")

	require.NoError(t, f.store.DeleteUser(f.ctx, f.bob.ID))

	_, err := f.store.GetPost(f.ctx, bobPost.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.GetComment(f.ctx, onBobs.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.GetComment(f.ctx, byBob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.GetComment(f.ctx, kept.ID)
	assert.NoError(t, err)
	_, err = f.store.GetUserByUsername(f.ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testUsers(t *testing.T, f *fixture) {
	got, err := f.store.GetUserByUsername(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, got.ID)

	got.Username = "alice2"
	got.FirstName = "Alice"
	updated, err := f.store.UpdateUser(f.ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "x", updated.PasswordHash)

	_, err = f.store.GetUserByUsername(f.ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.GetUserByID(f.ctx, 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testSessions(t *testing.T, f *fixture) {
	live := &domain.Session{Token: "live", UserID: f.alice.ID, ExpiresAt: Base.Add(time.Hour)}
	stale := &domain.Session{Token: "stale", UserID: f.bob.ID, ExpiresAt: Base.Add(-time.Minute)}
	require.NoError(t, f.store.CreateSession(f.ctx, live))
	require.NoError(t, f.store.CreateSession(f.ctx, stale))

	got, err := f.store.GetSession(f.ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)

	n, err := f.store.DeleteExpiredSessions(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = f.store.GetSession(f.ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.store.DeleteSession(f.ctx, "live"))
	_, err = f.store.GetSession(f.ctx, "live")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
