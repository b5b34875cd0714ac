// Package models contains data structures for the EcoCircle domain.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultCategory is assigned to posts submitted without a category label.
const DefaultCategory = "General"

// User mirrors the account row kept by the remote content store. The engine
// never creates users; it only reads the denormalized author fields.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	AvatarURL string         `json:"avatar_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Post represents one user submission. A post must carry non-empty content
// or an image reference; both the gateway and the store enforce this.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Title    string `json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	ImageURL string `json:"image_url"`
	Category string `gorm:"not null;default:General" json:"category"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current viewer liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasBody reports whether the post satisfies the content-or-image rule.
func (p *Post) HasBody() bool {
	return strings.TrimSpace(p.Content) != "" || strings.TrimSpace(p.ImageURL) != ""
}

// Comment represents one reply to a post.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like records one user's endorsement of a post. The (user, post) pair is
// unique at the store layer; the engine surfaces likes as a toggle.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostPatch is a partial update of a post's mutable fields. Nil fields are
// left untouched on merge.
type PostPatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	Category *string `json:"category,omitempty"`
}

// Apply merges the patch into the post.
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.ImageURL != nil {
		post.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		post.Category = *p.Category
	}
}

// IsZero reports whether the patch changes nothing.
func (p PostPatch) IsZero() bool {
	return p.Title == nil && p.Content == nil && p.ImageURL == nil && p.Category == nil
}
