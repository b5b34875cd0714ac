// Package syncstore holds the engine's single source of truth for fetched
// content: the global feed, the session user's feed, the current post with
// its comment thread, and transient UI flags. State advances only through
// discrete transitions applied by a pure reducer; no transition mutates a
// previous snapshot in place.
package syncstore

import "github.com/kanishk-8/EcoCircle/internal/models"

// Snapshot is the store's complete state at one point in time.
//
// Invariant: a post appearing in more than one of {Feed, UserFeed,
// CurrentPost} carries identical mutable fields (likes count, comments
// count, liked flag) after every transition.
type Snapshot struct {
	// Feed is the global feed, newest first.
	Feed []*models.Post `json:"feed"`
	// UserFeed is the session user's own posts, newest first.
	UserFeed []*models.Post `json:"user_feed"`
	// CurrentPost is the single-post detail slot, nil when no post is open.
	CurrentPost *models.Post `json:"current_post"`
	// Comments is CurrentPost's thread, oldest first. Invalid without a
	// current post.
	Comments []*models.Comment `json:"comments"`

	Loading    bool   `json:"loading"`
	Refreshing bool   `json:"refreshing"`
	ErrMsg     string `json:"error,omitempty"`
}
