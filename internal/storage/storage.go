// Package storage defines the contract the engine holds against the remote
// content store: three entity collections (posts, comments, likes) plus the
// aggregate read views joining counts and author display data.
package storage

import (
	"context"
	"errors"

	"github.com/kanishk-8/EcoCircle/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist. Access
	// control rejections at the store surface the same way, so callers
	// cannot distinguish "missing" from "not yours".
	ErrNotFound = errors.New("storage: not found")

	// ErrAlreadyLiked is returned by Like when the (user, post) pair already
	// exists. The gateway treats it as "already liked", never a hard failure.
	ErrAlreadyLiked = errors.New("storage: already liked")

	// ErrEmptyPost is returned when a post violates the content-or-image rule.
	ErrEmptyPost = errors.New("storage: post requires content or an image")
)

// ContentStore is the narrow request/response surface of the remote store.
// viewerID scopes the derived "liked" flag; zero means anonymous.
type ContentStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error)
	ListPosts(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListUserPosts(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	// DeletePost removes the post and cascades to its comments and likes.
	DeletePost(ctx context.Context, id uint) error

	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	// LikedPostIDs returns the subset of postIDs liked by userID in one call.
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	// ListComments returns the thread oldest first, authors joined.
	ListComments(ctx context.Context, postID uint) ([]*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
}
