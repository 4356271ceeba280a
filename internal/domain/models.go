package domain

import "time"

// MaxLength - предельная длина заголовков и названий.
const MaxLength = 256

// User - зарегистрированный пользователь блога.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(254)"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(150)"`
	LastName     string    `json:"lastName" gorm:"type:varchar(150)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null"`
}

// Session связывает токен из cookie с пользователем.
type Session struct {
	Token     string    `gorm:"type:varchar(64);primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// Category - тематическая категория. Управляется только администратором.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(256);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(64);uniqueIndex;not null"`
	IsPublished bool      `json:"isPublished" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null"`
}

// Location - место, к которому привязана публикация.
type Location struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(256);not null"`
	IsPublished bool      `json:"isPublished" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null"`
}

// Post - публикация. PubDate в будущем означает отложенную публикацию.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(256);not null"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	Image       string    `json:"image" gorm:"type:varchar(255)"`
	PubDate     time.Time `json:"pubDate" gorm:"not null;index"`
	IsPublished bool      `json:"isPublished" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null"`

	AuthorID   uint      `json:"authorId" gorm:"not null;index"`
	Author     *User     `json:"author,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	LocationID *uint     `json:"locationId,omitempty" gorm:"index"`
	Location   *Location `json:"location,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	CategoryID *uint     `json:"categoryId,omitempty" gorm:"index"`
	Category   *Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL;"`

	// CommentCount заполняется только при чтении (подзапрос в SELECT).
	CommentCount int64 `json:"commentCount" gorm:"->;-:migration"`
}

// OwnerID возвращает идентификатор автора.
func (p *Post) OwnerID() uint { return p.AuthorID }

// Comment - комментарий к публикации.
type Comment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	IsPublished bool      `json:"isPublished" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;index"`

	PostID   uint  `json:"postId" gorm:"not null;index"`
	Post     *Post `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID uint  `json:"authorId" gorm:"not null;index"`
	Author   *User `json:"author,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}

// OwnerID возвращает идентификатор автора.
func (c *Comment) OwnerID() uint { return c.AuthorID }
