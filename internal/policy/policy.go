// Package policy содержит правила доступа: кто видит публикацию и кто
// может ее изменять. Функции чистые, текущее время передается явно.
package policy

import (
	"time"

	"github.com/UkralStul/blogicum/internal/domain"
)

// Authored - сущность с автором (публикация, комментарий).
type Authored interface {
	OwnerID() uint
}

// IsPublic сообщает, видна ли публикация любому зрителю в момент now:
// опубликована, категория отсутствует или опубликована, дата публикации наступила.
func IsPublic(post *domain.Post, now time.Time) bool {
	if post == nil || !post.IsPublished {
		return false
	}
	if post.CategoryID != nil {
		// Категория не подгружена - считаем скрытой.
		if post.Category == nil || !post.Category.IsPublished {
			return false
		}
	}
	return !post.PubDate.After(now)
}

// IsAuthor сообщает, является ли зритель автором. Анонимный зритель (nil)
// автором не бывает.
func IsAuthor(entity Authored, viewer *domain.User) bool {
	if viewer == nil || viewer.ID == 0 {
		return false
	}
	return entity.OwnerID() == viewer.ID
}

// IsVisible - автор видит свои черновики и отложенные публикации,
// остальные только публичные.
func IsVisible(post *domain.Post, viewer *domain.User, now time.Time) bool {
	if post == nil {
		return false
	}
	if IsAuthor(post, viewer) {
		return true
	}
	return IsPublic(post, now)
}

// CanMutate - изменять и удалять сущность может только ее автор.
func CanMutate(entity Authored, viewer *domain.User) bool {
	return IsAuthor(entity, viewer)
}
