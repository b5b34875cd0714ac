package gateway

import (
	"context"
	"errors"

	"github.com/kanishk-8/EcoCircle/internal/cache"
	"github.com/kanishk-8/EcoCircle/internal/models"
	"github.com/kanishk-8/EcoCircle/internal/moderation"
	"github.com/kanishk-8/EcoCircle/internal/objectstore"
	"github.com/kanishk-8/EcoCircle/internal/storage"
	"github.com/kanishk-8/EcoCircle/internal/syncstore"
)

// CreatePostInput carries one post submission.
type CreatePostInput struct {
	Title    string
	Content  string
	Category string
	Image    *ImageUpload
}

// UpdatePostInput is a partial post edit. Nil fields are left unchanged;
// a non-nil Image replaces the existing one.
type UpdatePostInput struct {
	PostID   uint
	Title    *string
	Content  *string
	Category *string
	Image    *ImageUpload
}

// CreatePost validates, moderates, uploads the image if any, persists the
// post, and prepends the confirmed row to both feeds. Validation runs before
// moderation so empty submissions never reach the adapter.
func (g *Gateway) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const op = "create_post"
	if err := g.requireSession(); err != nil {
		return nil, g.fail(ctx, op, err)
	}

	content := trimmed(in.Content)
	if content == "" && in.Image == nil {
		return nil, g.fail(ctx, op, models.NewValidationError("Post needs text content or an image"))
	}
	category := trimmed(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	judgment := g.mod.Classify(ctx, moderation.Submission{
		Title:    in.Title,
		Content:  content,
		Category: category,
		HasImage: in.Image != nil,
	})
	if !judgment.Approved() {
		return nil, g.fail(ctx, op, models.NewModerationRejectedError(judgment.Reasons, judgment.Suggestions))
	}

	imageURL := ""
	if in.Image != nil {
		url, err := g.objects.Put(ctx, objectstore.PutInput{
			OwnerID:     g.session.UserID,
			Filename:    in.Image.Filename,
			ContentType: in.Image.ContentType,
			Data:        in.Image.Data,
		})
		if err != nil {
			return nil, g.fail(ctx, op, models.NewUploadFailedError(err))
		}
		imageURL = url
	}

	post := &models.Post{
		UserID:   g.session.UserID,
		Title:    trimmed(in.Title),
		Content:  content,
		ImageURL: imageURL,
		Category: category,
	}
	if err := g.store.CreatePost(ctx, post); err != nil {
		if imageURL != "" {
			_ = g.objects.Remove(ctx, imageURL)
		}
		return nil, g.fail(ctx, op, normalize(err, "Post", post.ID))
	}

	// Re-fetch so the dispatched post carries author data and zeroed counts
	// exactly as the store renders them.
	created, err := g.store.GetPost(ctx, post.ID, g.session.UserID)
	if err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Post", post.ID))
	}

	g.invalidateFeeds(ctx)
	g.sync.Dispatch(syncstore.PostCreated{Post: created})
	g.done(op)
	return created, nil
}

// GetPosts loads one page of the global feed into the store. refresh selects
// the refreshing flag instead of loading and bypasses the cache.
func (g *Gateway) GetPosts(ctx context.Context, limit, offset int, refresh bool) ([]*models.Post, error) {
	const op = "get_posts"
	if err := g.requireSession(); err != nil {
		return nil, g.fail(ctx, op, err)
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	if refresh {
		g.sync.Dispatch(syncstore.SetRefreshing{Refreshing: true})
	} else {
		g.sync.Dispatch(syncstore.SetLoading{Loading: true})
	}

	posts, err := g.loadFeedPage(ctx, limit, offset, refresh)
	if err != nil {
		return nil, g.fail(ctx, op, err)
	}

	g.sync.Dispatch(syncstore.SetFeed{Posts: posts})
	g.done(op)
	return posts, nil
}

// loadFeedPage serves the first page cache-aside. Cached pages are stored
// viewer-agnostic, so liked flags are re-derived for the session user in one
// batched lookup after a hit.
func (g *Gateway) loadFeedPage(ctx context.Context, limit, offset int, refresh bool) ([]*models.Post, error) {
	if refresh || offset != 0 || limit > defaultFeedLimit {
		return g.store.ListPosts(ctx, limit, offset, g.session.UserID)
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.FeedKey(), &posts, cache.FeedTTL, func() error {
		fetched, fetchErr := g.store.ListPosts(ctx, limit, offset, 0)
		if fetchErr != nil {
			return fetchErr
		}
		posts = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := g.markLiked(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// invalidateFeeds drops the cached feed pages. Every write that shifts a
// post's counters must call this, or the next cache-assisted read dispatches
// pre-mutation counts over the corrected views.
func (g *Gateway) invalidateFeeds(ctx context.Context) {
	cache.Invalidate(ctx, cache.FeedKey())
	cache.Invalidate(ctx, cache.UserFeedKey(g.session.UserID))
}

// markLiked fills the viewer-scoped liked flag for a viewer-agnostic page.
func (g *Gateway) markLiked(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	likedIDs, err := g.store.LikedPostIDs(ctx, g.session.UserID, ids)
	if err != nil {
		return err
	}
	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	for _, p := range posts {
		p.Liked = liked[p.ID]
	}
	return nil
}

// GetUserPosts loads one page of a user's posts. userID zero means the
// session user; only the session user's own page feeds the user-feed view.
func (g *Gateway) GetUserPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	const op = "get_user_posts"
	if err := g.requireSession(); err != nil {
		return nil, g.fail(ctx, op, err)
	}
	if userID == 0 {
		userID = g.session.UserID
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	own := userID == g.session.UserID
	if own {
		g.sync.Dispatch(syncstore.SetLoading{Loading: true})
	}

	posts, err := g.loadUserPage(ctx, userID, limit, offset, own)
	if err != nil {
		return nil, g.fail(ctx, op, err)
	}

	if own {
		g.sync.Dispatch(syncstore.SetUserFeed{Posts: posts})
	}
	g.done(op)
	return posts, nil
}

// loadUserPage serves the session user's first own page cache-aside. The
// engine has exactly one viewer, so the cached rows can keep their
// viewer-scoped liked flags. Other users' pages always hit the store.
func (g *Gateway) loadUserPage(ctx context.Context, userID uint, limit, offset int, own bool) ([]*models.Post, error) {
	if !own || offset != 0 || limit > defaultFeedLimit {
		return g.store.ListUserPosts(ctx, userID, limit, offset, g.session.UserID)
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.UserFeedKey(userID), &posts, cache.FeedTTL, func() error {
		fetched, fetchErr := g.store.ListUserPosts(ctx, userID, limit, offset, g.session.UserID)
		if fetchErr != nil {
			return fetchErr
		}
		posts = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost loads one post into the detail slot.
func (g *Gateway) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	const op = "get_post"
	if err := g.requireSession(); err != nil {
		return nil, g.fail(ctx, op, err)
	}

	post, err := g.store.GetPost(ctx, id, g.session.UserID)
	if err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Post", id))
	}

	g.sync.Dispatch(syncstore.SetCurrentPost{Post: post})
	g.done(op)
	return post, nil
}

// UpdatePost applies a partial edit to the caller's own post and patches it
// in every view. A replacement image is uploaded before the row is touched;
// the old object is removed only after the update sticks.
func (g *Gateway) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	const op = "update_post"
	if err := g.requireSession(); err != nil {
		return nil, g.fail(ctx, op, err)
	}

	existing, err := g.store.GetPost(ctx, in.PostID, g.session.UserID)
	if err != nil {
		return nil, g.fail(ctx, op, normalize(err, "Post", in.PostID))
	}
	if existing.UserID != g.session.UserID {
		return nil, g.fail(ctx, op, models.NewNotOwnerError("You can only edit your own posts"))
	}

	patch := models.PostPatch{}
	if in.Title != nil {
		t := trimmed(*in.Title)
		patch.Title = &t
	}
	if in.Content != nil {
		c := trimmed(*in.Content)
		patch.Content = &c
	}
	if in.Category != nil && trimmed(*in.Category) != "" {
		c := trimmed(*in.Category)
		patch.Category = &c
	}

	oldImageURL := ""
	if in.Image != nil {
		url, putErr := g.objects.Put(ctx, objectstore.PutInput{
			OwnerID:     g.session.UserID,
			Filename:    in.Image.Filename,
			ContentType: in.Image.ContentType,
			Data:        in.Image.Data,
		})
		if putErr != nil {
			return nil, g.fail(ctx, op, models.NewUploadFailedError(putErr))
		}
		patch.ImageURL = &url
		oldImageURL = existing.ImageURL
	}

	if patch.IsZero() {
		g.done(op)
		return existing, nil
	}

	updated := *existing
	patch.Apply(&updated)
	if !updated.HasBody() {
		if patch.ImageURL != nil {
			_ = g.objects.Remove(ctx, *patch.ImageURL)
		}
		return nil, g.fail(ctx, op, models.NewValidationError("Post needs text content or an image"))
	}

	if err := g.store.UpdatePost(ctx, &updated); err != nil {
		if patch.ImageURL != nil {
			_ = g.objects.Remove(ctx, *patch.ImageURL)
		}
		return nil, g.fail(ctx, op, normalize(err, "Post", in.PostID))
	}
	if oldImageURL != "" {
		_ = g.objects.Remove(ctx, oldImageURL)
	}

	g.invalidateFeeds(ctx)
	g.sync.Dispatch(syncstore.PostUpdated{ID: in.PostID, Patch: patch})
	g.done(op)
	return &updated, nil
}

// DeletePost removes the caller's own post, its image object, and every
// trace of it from the views.
func (g *Gateway) DeletePost(ctx context.Context, id uint) error {
	const op = "delete_post"
	if err := g.requireSession(); err != nil {
		return g.fail(ctx, op, err)
	}

	existing, err := g.store.GetPost(ctx, id, g.session.UserID)
	if err != nil {
		return g.fail(ctx, op, normalize(err, "Post", id))
	}
	if existing.UserID != g.session.UserID {
		return g.fail(ctx, op, models.NewNotOwnerError("You can only delete your own posts"))
	}

	// The image object goes first, best effort.
	if existing.ImageURL != "" {
		_ = g.objects.Remove(ctx, existing.ImageURL)
	}
	if err := g.store.DeletePost(ctx, id); err != nil {
		return g.fail(ctx, op, normalize(err, "Post", id))
	}

	g.invalidateFeeds(ctx)
	g.sync.Dispatch(syncstore.PostDeleted{ID: id})
	g.done(op)
	return nil
}

// ToggleLike flips the session user's like on a post and shifts the count in
// every view. A concurrent duplicate insert resolves to "already liked" with
// no count shift, so the store never double-counts.
func (g *Gateway) ToggleLike(ctx context.Context, postID uint) (bool, error) {
	const op = "toggle_like"
	if err := g.requireSession(); err != nil {
		return false, g.fail(ctx, op, err)
	}

	liked, err := g.store.IsLiked(ctx, g.session.UserID, postID)
	if err != nil {
		return false, g.fail(ctx, op, normalize(err, "Post", postID))
	}

	if liked {
		if err := g.store.Unlike(ctx, g.session.UserID, postID); err != nil {
			return false, g.fail(ctx, op, normalize(err, "Post", postID))
		}
		g.invalidateFeeds(ctx)
		g.sync.Dispatch(syncstore.LikeToggled{PostID: postID, Liked: false, Delta: -1})
		g.done(op)
		return false, nil
	}

	switch err := g.store.Like(ctx, g.session.UserID, postID); {
	case err == nil:
		g.invalidateFeeds(ctx)
		g.sync.Dispatch(syncstore.LikeToggled{PostID: postID, Liked: true, Delta: 1})
	case isAlreadyLiked(err):
		g.invalidateFeeds(ctx)
		g.sync.Dispatch(syncstore.LikeToggled{PostID: postID, Liked: true, Delta: 0})
	default:
		return false, g.fail(ctx, op, normalize(err, "Post", postID))
	}
	g.done(op)
	return true, nil
}

func isAlreadyLiked(err error) bool {
	return errors.Is(err, storage.ErrAlreadyLiked)
}
