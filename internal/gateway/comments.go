package gateway

import (
	"context"

	"github.com/kanishk-8/EcoCircle/internal/models"
	"github.com/kanishk-8/EcoCircle/internal/syncstore"
)

// GetPostComments loads a post's thread, oldest first, into the store.
func (g *Gateway) GetPostComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	const op = "get_post_comments"
	if err := g.requireSession(); err != nil {
		return nil, g.fail(ctx, op, err)
	}

	comments, err := g.store.ListComments(ctx, postID)
	if err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Post", postID))
	}

	g.sync.Dispatch(syncstore.SetComments{Comments: comments})
	g.done(op)
	return comments, nil
}

// AddComment appends a reply to a post and bumps the parent's comment count
// in every view containing it.
func (g *Gateway) AddComment(ctx context.Context, postID uint, content string) (*models.Comment, error) {
	const op = "add_comment"
	if err := g.requireSession(); err != nil {
		return nil, g.fail(ctx, op, err)
	}

	content = trimmed(content)
	if content == "" {
		return nil, g.fail(ctx, op, models.NewValidationError("Comment cannot be empty"))
	}

	// The parent must exist; a dangling comment would desync the counts.
	if _, err := g.store.GetPost(ctx, postID, g.session.UserID); err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Post", postID))
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  g.session.UserID,
		Content: content,
	}
	if err := g.store.CreateComment(ctx, comment); err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Post", postID))
	}

	created, err := g.store.GetComment(ctx, comment.ID)
	if err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Comment", comment.ID))
	}

	// The parent's comment count changed, so cached feed pages are stale.
	g.invalidateFeeds(ctx)
	g.sync.Dispatch(syncstore.CommentAdded{Comment: created})
	g.done(op)
	return created, nil
}

// UpdateComment replaces the body of the caller's own comment.
func (g *Gateway) UpdateComment(ctx context.Context, id uint, content string) (*models.Comment, error) {
	const op = "update_comment"
	if err := g.requireSession(); err != nil {
		return nil, g.fail(ctx, op, err)
	}

	content = trimmed(content)
	if content == "" {
		return nil, g.fail(ctx, op, models.NewValidationError("Comment cannot be empty"))
	}

	existing, err := g.store.GetComment(ctx, id)
	if err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Comment", id))
	}
	if existing.UserID != g.session.UserID {
		return nil, g.fail(ctx, op, models.NewNotOwnerError("You can only edit your own comments"))
	}

	existing.Content = content
	if err := g.store.UpdateComment(ctx, existing); err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Comment", id))
	}

	g.sync.Dispatch(syncstore.CommentUpdated{ID: id, Content: content})
	g.done(op)
	return existing, nil
}

// DeleteComment removes the caller's own comment and decrements the parent's
// comment count in every view.
func (g *Gateway) DeleteComment(ctx context.Context, id uint) error {
	const op = "delete_comment"
	if err := g.requireSession(); err != nil {
		return g.fail(ctx, op, err)
	}

	existing, err := g.store.GetComment(ctx, id)
	if err != nil {
		return g.fail(ctx, op, normalize(err, "Comment", id))
	}
	if existing.UserID != g.session.UserID {
		return g.fail(ctx, op, models.NewNotOwnerError("You can only delete your own comments"))
	}

	if err := g.store.DeleteComment(ctx, id); err != nil {
		return g.fail(ctx, op, normalize(err, "Comment", id))
	}

	g.invalidateFeeds(ctx)
	g.sync.Dispatch(syncstore.CommentDeleted{ID: id})
	g.done(op)
	return nil
}

// ClearCurrentPost empties the detail slot and thread when the UI leaves the
// post screen. Safe to call repeatedly.
func (g *Gateway) ClearCurrentPost() {
	g.sync.Dispatch(syncstore.ClearCurrentPost{})
}

// ClearError acknowledges the surfaced error message.
func (g *Gateway) ClearError() {
	g.sync.Dispatch(syncstore.ClearError{})
}
