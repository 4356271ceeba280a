package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/blogicum/internal/auth"
	"github.com/UkralStul/blogicum/internal/blog"
	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/session"
	"github.com/UkralStul/blogicum/internal/storage"
	"github.com/UkralStul/blogicum/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const cookieName = "sessionid"

type webEnv struct {
	ctx      context.Context
	clock    *clock.Fake
	store    *inmemory.Store
	blog     *blog.Service
	server   *Server
	mediaDir string
	alice    *domain.User
	bob      *domain.User
	food     *domain.Category
	news     *domain.Category
}

func newWebEnv(t *testing.T) *webEnv {
	t.Helper()
	clk := clock.NewFake(now)
	store := inmemory.New(clk)
	e := &webEnv{
		ctx:      context.Background(),
		clock:    clk,
		store:    store,
		blog:     blog.New(store, clk, 0),
		mediaDir: t.TempDir(),
	}

	srv, err := New(Deps{
		Store:  store,
		Blog:   e.blog,
		Auth:   auth.New(store, clk, auth.WithBcryptCost(bcrypt.MinCost)),
		Clock:  clk,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Cookie: session.Cookie{Name: cookieName},
		Media:  MediaOptions{Dir: e.mediaDir, URL: "/media/", MaxUploadBytes: 1 << 20},
	})
	require.NoError(t, err)
	e.server = srv

	e.alice, err = store.CreateUser(e.ctx, &domain.User{Username: "alice"})
	require.NoError(t, err)
	e.bob, err = store.CreateUser(e.ctx, &domain.User{Username: "bob"})
	require.NoError(t, err)
	e.food, err = store.CreateCategory(e.ctx, &domain.Category{Title: "Food", Slug: "food", IsPublished: true})
	require.NoError(t, err)
	e.news, err = store.CreateCategory(e.ctx, &domain.Category{Title: "News", Slug: "news", IsPublished: false})
	require.NoError(t, err)
	return e
}

// token открывает сессию пользователя напрямую в хранилище.
func (e *webEnv) token(t *testing.T, user *domain.User) string {
	t.Helper()
	token := "token-" + user.Username
	require.NoError(t, e.store.CreateSession(e.ctx, &domain.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
	}))
	return token
}

func (e *webEnv) serve(t *testing.T, req *http.Request, user *domain.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: e.token(t, user)})
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *webEnv) get(t *testing.T, target string, user *domain.User) *httptest.ResponseRecorder {
	t.Helper()
	return e.serve(t, httptest.NewRequest(http.MethodGet, target, nil), user)
}

func (e *webEnv) post(t *testing.T, target string, form url.Values, user *domain.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(t, req, user)
}

func (e *webEnv) createPost(t *testing.T, author *domain.User, title string, category *domain.Category, pubDate time.Time) *domain.Post {
	t.Helper()
	p, err := e.blog.CreatePost(e.ctx, author, blog.PostInput{
		Title:       title,
		Text:        "body of " + title,
		PubDate:     blog.FormatPubDate(pubDate),
		CategoryID:  fmt.Sprint(category.ID),
		IsPublished: true,
	})
	require.NoError(t, err)
	return p
}

func postValues(category *domain.Category, title string) url.Values {
	return url.Values{
		"title":        {title},
		"text":         {"text"},
		"pub_date":     {blog.FormatPubDate(now.Add(-time.Hour))},
		"category":     {fmt.Sprint(category.ID)},
		"is_published": {"on"},
	}
}

func TestIndex_ShowsOnlyVisiblePosts(t *testing.T) {
	e := newWebEnv(t)
	e.createPost(t, e.alice, "Visible", e.food, now.Add(-time.Hour))
	e.createPost(t, e.alice, "Scheduled", e.food, now.Add(time.Hour))
	e.createPost(t, e.alice, "InHiddenCategory", e.news, now.Add(-time.Hour))

	rec := e.get(t, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Visible")
	assert.NotContains(t, body, "Scheduled")
	assert.NotContains(t, body, "InHiddenCategory")
}

func TestIndex_BadPageIsNotFound(t *testing.T) {
	e := newWebEnv(t)
	e.createPost(t, e.alice, "Only", e.food, now.Add(-time.Hour))

	assert.Equal(t, http.StatusNotFound, e.get(t, "/?page=abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/?page=2", nil).Code)
	assert.Equal(t, http.StatusOK, e.get(t, "/?page=last", nil).Code)
}

func TestCategory_UnpublishedIsNotFoundForEveryone(t *testing.T) {
	e := newWebEnv(t)
	e.createPost(t, e.alice, "News item", e.news, now.Add(-time.Hour))

	assert.Equal(t, http.StatusNotFound, e.get(t, "/category/news/", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/category/news/", e.alice).Code)
	assert.Equal(t, http.StatusOK, e.get(t, "/category/food/", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/category/missing/", nil).Code)
}

func TestDetail_FuturePostOnlyForAuthor(t *testing.T) {
	e := newWebEnv(t)
	p := e.createPost(t, e.alice, "Tomorrow", e.food, now.Add(time.Hour))
	target := fmt.Sprintf("/posts/%d/", p.ID)

	assert.Equal(t, http.StatusNotFound, e.get(t, target, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, target, e.bob).Code)

	rec := e.get(t, target, e.alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`action="/posts/%d/comment/"`, p.ID))
}

func TestDetail_MissingAndMalformedIDs(t *testing.T) {
	e := newWebEnv(t)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/posts/999/", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/posts/abc/", nil).Code)
}

func TestMutations_AnonymousRedirectsToLogin(t *testing.T) {
	e := newWebEnv(t)
	p := e.createPost(t, e.alice, "Post", e.food, now.Add(-time.Hour))

	for _, target := range []string{
		"/posts/create/",
		fmt.Sprintf("/posts/%d/edit/", p.ID),
		fmt.Sprintf("/posts/%d/delete/", p.ID),
		"/profile/edit/",
	} {
		t.Run(target, func(t *testing.T) {
			rec := e.get(t, target, nil)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(target), rec.Header().Get("Location"))
		})
	}

	rec := e.post(t, fmt.Sprintf("/posts/%d/comment/", p.ID), url.Values{"text": {"hi"}}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/auth/login/"))
}

func TestCreatePost(t *testing.T) {
	e := newWebEnv(t)

	rec := e.get(t, "/posts/create/", e.alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Food")

	rec = e.post(t, "/posts/create/", postValues(e.food, "Fresh"), e.alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/alice/", rec.Header().Get("Location"))

	page, err := e.blog.Feed(e.ctx, nil, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Fresh", page.Posts[0].Title)
	assert.Equal(t, e.alice.ID, page.Posts[0].AuthorID)
}

func TestCreatePost_InvalidFormIsRerendered(t *testing.T) {
	e := newWebEnv(t)
	form := postValues(e.food, "")

	rec := e.post(t, "/posts/create/", form, e.alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)

	total, err := e.store.CountPosts(e.ctx, storage.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreatePost_StoresUploadedImage(t *testing.T) {
	e := newWebEnv(t)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range postValues(e.food, "With image") {
		require.NoError(t, mw.WriteField(k, v[0]))
	}
	fw, err := mw.CreateFormFile("image", "pic.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n0000IHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts/create/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := e.serve(t, req, e.alice)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	page, err := e.blog.Feed(e.ctx, nil, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	image := page.Posts[0].Image
	require.True(t, strings.HasPrefix(image, "images/"))
	assert.True(t, strings.HasSuffix(image, ".png"))
	_, err = os.Stat(filepath.Join(e.mediaDir, filepath.FromSlash(image)))
	assert.NoError(t, err)

	served := e.get(t, "/media/"+image, nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/media/images/", nil).Code)
}

func TestCreatePost_RejectsNonImageUpload(t *testing.T) {
	e := newWebEnv(t)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range postValues(e.food, "Bad upload") {
		require.NoError(t, mw.WriteField(k, v[0]))
	}
	fw, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("just some text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts/create/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := e.serve(t, req, e.alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	entries, err := os.ReadDir(e.mediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreatePost_RejectsOversizedImage(t *testing.T) {
	e := newWebEnv(t)

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range postValues(e.food, "Too big") {
		require.NoError(t, mw.WriteField(k, v[0]))
	}
	fw, err := mw.CreateFormFile("image", "big.png")
	require.NoError(t, err)
	// лимит 1 МиБ, файл на полмегабайта больше
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte{0}, 3<<19))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts/create/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := e.serve(t, req, e.alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The uploaded file is too large.")

	total, err := e.store.CountPosts(e.ctx, storage.PostFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	entries, err := os.ReadDir(e.mediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEditAndDelete_HiddenPostIsNotFoundForOthers(t *testing.T) {
	e := newWebEnv(t)
	p := e.createPost(t, e.alice, "Scheduled", e.food, now.Add(time.Hour))
	base := fmt.Sprintf("/posts/%d/", p.ID)

	assert.Equal(t, http.StatusNotFound, e.get(t, base+"edit/", e.bob).Code)
	assert.Equal(t, http.StatusNotFound, e.post(t, base+"edit/", postValues(e.food, "Hijacked"), e.bob).Code)
	assert.Equal(t, http.StatusNotFound, e.post(t, base+"delete/", nil, e.bob).Code)
	assert.Equal(t, http.StatusNotFound, e.post(t, "/posts/9999/edit/", postValues(e.food, "Hijacked"), e.bob).Code)

	assert.Equal(t, http.StatusOK, e.get(t, base+"edit/", e.alice).Code)
}

func TestEditPost_NonAuthorIsRedirectedToDetail(t *testing.T) {
	e := newWebEnv(t)
	p := e.createPost(t, e.alice, "Original", e.food, now.Add(-time.Hour))
	target := fmt.Sprintf("/posts/%d/edit/", p.ID)

	rec := e.get(t, target, e.bob)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, postURL(p.ID), rec.Header().Get("Location"))

	rec = e.post(t, target, postValues(e.food, "Hijacked"), e.bob)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, postURL(p.ID), rec.Header().Get("Location"))

	got, err := e.store.GetPost(e.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
}

func TestEditPost_AuthorUpdates(t *testing.T) {
	e := newWebEnv(t)
	p := e.createPost(t, e.alice, "Original", e.food, now.Add(-time.Hour))
	target := fmt.Sprintf("/posts/%d/edit/", p.ID)

	rec := e.get(t, target, e.alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Original"`)

	rec = e.post(t, target, postValues(e.food, "Renamed"), e.alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, postURL(p.ID), rec.Header().Get("Location"))

	got, err := e.store.GetPost(e.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestDeletePost(t *testing.T) {
	e := newWebEnv(t)
	p := e.createPost(t, e.alice, "Doomed", e.food, now.Add(-time.Hour))
	target := fmt.Sprintf("/posts/%d/delete/", p.ID)

	assert.Equal(t, http.StatusNotFound, e.get(t, target, e.bob).Code)
	assert.Equal(t, http.StatusNotFound, e.post(t, target, nil, e.bob).Code)
	_, err := e.store.GetPost(e.ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, e.get(t, target, e.alice).Code)
	rec := e.post(t, target, nil, e.alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/alice/", rec.Header().Get("Location"))
	_, err = e.store.GetPost(e.ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComments(t *testing.T) {
	e := newWebEnv(t)
	p := e.createPost(t, e.alice, "Discuss", e.food, now.Add(-time.Hour))
	base := fmt.Sprintf("/posts/%d/", p.ID)

	rec := e.post(t, base+"comment/", url.Values{"text": {"first!"}}, e.bob)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, base, rec.Header().Get("Location"))

	rec = e.post(t, base+"comment/", url.Values{"text": {""}}, e.bob)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	comments, err := e.store.ListComments(e.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	c := comments[0]
	editURL := fmt.Sprintf("%sedit_comment/%d/", base, c.ID)
	deleteURL := fmt.Sprintf("%sdelete_comment/%d/", base, c.ID)

	detail := e.get(t, base, nil)
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), "first!")

	// автор публикации не автор комментария
	assert.Equal(t, http.StatusSeeOther, e.get(t, editURL, e.alice).Code)
	assert.Equal(t, http.StatusNotFound, e.post(t, deleteURL, nil, e.alice).Code)

	rec = e.post(t, editURL, url.Values{"text": {"edited"}}, e.bob)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	got, err := e.store.GetComment(e.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)

	// комментарий чужой публикации
	other := e.createPost(t, e.alice, "Other", e.food, now.Add(-time.Hour))
	assert.Equal(t, http.StatusNotFound,
		e.get(t, fmt.Sprintf("/posts/%d/delete_comment/%d/", other.ID, c.ID), e.bob).Code)

	assert.Equal(t, http.StatusOK, e.get(t, deleteURL, e.bob).Code)
	rec = e.post(t, deleteURL, nil, e.bob)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = e.store.GetComment(e.ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfile(t *testing.T) {
	e := newWebEnv(t)
	e.createPost(t, e.alice, "Public", e.food, now.Add(-time.Hour))
	e.createPost(t, e.alice, "Draft", e.food, now.Add(time.Hour))

	anon := e.get(t, "/profile/alice/", nil).Body.String()
	assert.Contains(t, anon, "Public")
	assert.NotContains(t, anon, "Draft")

	own := e.get(t, "/profile/alice/", e.alice).Body.String()
	assert.Contains(t, own, "Draft")

	assert.Equal(t, http.StatusNotFound, e.get(t, "/profile/nobody/", nil).Code)
}

func TestProfileEdit(t *testing.T) {
	e := newWebEnv(t)

	rec := e.get(t, "/profile/edit/", e.alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="alice"`)

	rec = e.post(t, "/profile/edit/", url.Values{"username": {"bob"}}, e.alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.post(t, "/profile/edit/", url.Values{"username": {"alicia"}, "email": {"a@example.com"}}, e.alice)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/alicia/", rec.Header().Get("Location"))
}

func TestRegistrationLoginLogout(t *testing.T) {
	e := newWebEnv(t)

	rec := e.post(t, "/auth/registration/", url.Values{
		"username":  {"carol"},
		"password1": {"long-enough-pass"},
		"password2": {"long-enough-pass"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login/", rec.Header().Get("Location"))

	rec = e.post(t, "/auth/login/", url.Values{"username": {"carol"}, "password": {"wrong-password"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.post(t, "/auth/login/", url.Values{
		"username": {"carol"},
		"password": {"long-enough-pass"},
		"next":     {"/posts/create/"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/posts/create/", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	req := httptest.NewRequest(http.MethodGet, "/posts/create/", nil)
	req.AddCookie(sessionCookie)
	rec = e.serve(t, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/logout/", nil)
	req.AddCookie(sessionCookie)
	rec = e.serve(t, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/auth/login/")

	_, err := e.store.GetSession(e.ctx, sessionCookie.Value)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin_IgnoresExternalNext(t *testing.T) {
	e := newWebEnv(t)
	_, err := auth.New(e.store, e.clock, auth.WithBcryptCost(bcrypt.MinCost)).Register(e.ctx, auth.RegisterInput{
		Username: "dave", Password1: "long-enough-pass", Password2: "long-enough-pass",
	})
	require.NoError(t, err)

	rec := e.post(t, "/auth/login/", url.Values{
		"username": {"dave"},
		"password": {"long-enough-pass"},
		"next":     {"//evil.example.com/"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/dave/", rec.Header().Get("Location"))
}

func TestDetail_RendersMarkdownWithoutRawHTML(t *testing.T) {
	e := newWebEnv(t)
	p, err := e.blog.CreatePost(e.ctx, e.alice, blog.PostInput{
		Title:       "Formatted",
		Text:        "**bold** line\nnext <script>alert(1)</script>",
		PubDate:     blog.FormatPubDate(now.Add(-time.Hour)),
		CategoryID:  fmt.Sprint(e.food.ID),
		IsPublished: true,
	})
	require.NoError(t, err)

	rec := e.get(t, fmt.Sprintf("/posts/%d/", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.Contains(t, body, "<br")
	assert.NotContains(t, body, "<script>")
}

func TestResponsesAreCompressed(t *testing.T) {
	e := newWebEnv(t)
	for i := 0; i < 5; i++ {
		e.createPost(t, e.alice, fmt.Sprintf("Post %d %s", i, strings.Repeat("long text ", 20)), e.food, now.Add(-time.Hour))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := e.serve(t, req, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	plain := e.get(t, "/", nil)
	assert.Empty(t, plain.Header().Get("Content-Encoding"))
}

func TestStaticPages(t *testing.T) {
	e := newWebEnv(t)
	assert.Equal(t, http.StatusOK, e.get(t, "/pages/about/", nil).Code)
	assert.Equal(t, http.StatusOK, e.get(t, "/pages/rules/", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/no/such/page/", nil).Code)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"/posts/1/":         "/posts/1/",
		"//evil.com":        "",
		"/\\evil.com":       "",
		"https://evil.com/": "",
		"relative/path":     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}
