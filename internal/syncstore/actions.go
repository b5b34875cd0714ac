package syncstore

import "github.com/kanishk-8/EcoCircle/internal/models"

// Action is the sealed set of store transitions. Each variant carries the
// data its transition needs; Reduce is total over all of them.
type Action interface {
	// Name labels the transition for logs and metrics.
	Name() string
	isAction()
}

// SetLoading flips the loading flag.
type SetLoading struct{ Loading bool }

// SetRefreshing flips the refreshing flag.
type SetRefreshing struct{ Refreshing bool }

// SetError records the latest error message and clears loading/refreshing.
// An empty message clears the error slot.
type SetError struct{ Msg string }

// ClearError empties the error slot.
type ClearError struct{}

// SetFeed replaces the global feed wholesale and clears loading/refreshing.
type SetFeed struct{ Posts []*models.Post }

// SetUserFeed replaces the session user's feed wholesale.
type SetUserFeed struct{ Posts []*models.Post }

// SetCurrentPost replaces the single-post detail slot.
type SetCurrentPost struct{ Post *models.Post }

// SetComments replaces the current post's comment thread wholesale.
type SetComments struct{ Comments []*models.Comment }

// PostCreated prepends the confirmed new post to both feeds in one transition.
type PostCreated struct{ Post *models.Post }

// PostUpdated merges the patch into the post in every view containing it.
type PostUpdated struct {
	ID    uint
	Patch models.PostPatch
}

// PostDeleted removes the post from both feeds and clears the detail slot
// (and its thread) when it matches.
type PostDeleted struct{ ID uint }

// LikeToggled sets the liked flag and shifts the like count by Delta in
// every view containing the post.
type LikeToggled struct {
	PostID uint
	Liked  bool
	Delta  int
}

// CommentAdded appends to the thread when it belongs to the current post and
// increments the parent's comment count everywhere it appears.
type CommentAdded struct{ Comment *models.Comment }

// CommentUpdated replaces a comment's body text in place.
type CommentUpdated struct {
	ID      uint
	Content string
}

// CommentDeleted removes the comment from the thread and decrements the
// parent's comment count everywhere. The parent is resolved from the thread
// before removal; an unknown ID is a no-op.
type CommentDeleted struct{ ID uint }

// ClearCurrentPost empties the detail slot and its comment thread.
type ClearCurrentPost struct{}

func (SetLoading) Name() string       { return "set_loading" }
func (SetRefreshing) Name() string    { return "set_refreshing" }
func (SetError) Name() string         { return "set_error" }
func (ClearError) Name() string       { return "clear_error" }
func (SetFeed) Name() string          { return "set_feed" }
func (SetUserFeed) Name() string      { return "set_user_feed" }
func (SetCurrentPost) Name() string   { return "set_current_post" }
func (SetComments) Name() string      { return "set_comments" }
func (PostCreated) Name() string      { return "post_created" }
func (PostUpdated) Name() string      { return "post_updated" }
func (PostDeleted) Name() string      { return "post_deleted" }
func (LikeToggled) Name() string      { return "like_toggled" }
func (CommentAdded) Name() string     { return "comment_added" }
func (CommentUpdated) Name() string   { return "comment_updated" }
func (CommentDeleted) Name() string   { return "comment_deleted" }
func (ClearCurrentPost) Name() string { return "clear_current_post" }

func (SetLoading) isAction()       {}
func (SetRefreshing) isAction()    {}
func (SetError) isAction()         {}
func (ClearError) isAction()       {}
func (SetFeed) isAction()          {}
func (SetUserFeed) isAction()      {}
func (SetCurrentPost) isAction()   {}
func (SetComments) isAction()      {}
func (PostCreated) isAction()      {}
func (PostUpdated) isAction()      {}
func (PostDeleted) isAction()      {}
func (LikeToggled) isAction()      {}
func (CommentAdded) isAction()     {}
func (CommentUpdated) isAction()   {}
func (CommentDeleted) isAction()   {}
func (ClearCurrentPost) isAction() {}
