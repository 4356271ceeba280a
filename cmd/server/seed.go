package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/blogicum/internal/auth"
	"github.com/UkralStul/blogicum/internal/blog"
	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/domain"
	"github.com/UkralStul/blogicum/internal/storage"
)

const (
	demoUsername = "demo"
	demoPassword = "demo-password"
)

// fillWithDemoData создает пользователя, рубрики, места и несколько публикаций.
// Если пользователь demo уже есть, ничего не делает.
func fillWithDemoData(ctx context.Context, store storage.Storage, blogSvc *blog.Service, authSvc *auth.Service, clk clock.Clock) error {
	_, err := store.GetUserByUsername(ctx, demoUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("fillWithDemoData: %w", err)
	}

	author, err := authSvc.Register(ctx, auth.RegisterInput{
		Username:  demoUsername,
		Password1: demoPassword,
		Password2: demoPassword,
	})
	if err != nil {
		return fmt.Errorf("fillWithDemoData: failed to create user: %w", err)
	}

	travel, err := store.CreateCategory(ctx, &domain.Category{
		Title:       "Путешествия",
		Description: "Заметки о поездках",
		Slug:        "travel",
		IsPublished: true,
	})
	if err != nil {
		return fmt.Errorf("fillWithDemoData: failed to create category: %w", err)
	}
	// скрытая рубрика: ее публикации не попадают в ленту
	drafts, err := store.CreateCategory(ctx, &domain.Category{
		Title:       "Черновики",
		Description: "Рубрика снята с публикации",
		Slug:        "drafts",
		IsPublished: false,
	})
	if err != nil {
		return fmt.Errorf("fillWithDemoData: failed to create category: %w", err)
	}
	island, err := store.CreateLocation(ctx, &domain.Location{Name: "Остров отчаянья", IsPublished: true})
	if err != nil {
		return fmt.Errorf("fillWithDemoData: failed to create location: %w", err)
	}

	now := clk.Now()
	posts := []blog.PostInput{
		{Title: "Первый день на острове", Text: "Корабль разбился, но я жив.", PubDate: blog.FormatPubDate(now.Add(-48 * time.Hour)),
			CategoryID: fmt.Sprint(travel.ID), LocationID: fmt.Sprint(island.ID), IsPublished: true},
		{Title: "Строю хижину", Text: "Нашел подходящие бревна.", PubDate: blog.FormatPubDate(now.Add(-24 * time.Hour)),
			CategoryID: fmt.Sprint(travel.ID), IsPublished: true},
		{Title: "План на завтра", Text: "Эта публикация появится позже.", PubDate: blog.FormatPubDate(now.Add(24 * time.Hour)),
			CategoryID: fmt.Sprint(travel.ID), IsPublished: true},
		{Title: "Незаконченная мысль", Text: "Видна только автору.", PubDate: blog.FormatPubDate(now.Add(-time.Hour)),
			CategoryID: fmt.Sprint(drafts.ID), IsPublished: true},
	}
	var first *domain.Post
	for _, in := range posts {
		p, err := blogSvc.CreatePost(ctx, author, in)
		if err != nil {
			return fmt.Errorf("fillWithDemoData: failed to create post %q: %w", in.Title, err)
		}
		if first == nil {
			first = p
		}
	}

	if _, err := blogSvc.AddComment(ctx, author, first.ID, "Держусь!"); err != nil {
		return fmt.Errorf("fillWithDemoData: failed to create comment: %w", err)
	}
	return nil
}
