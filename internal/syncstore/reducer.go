package syncstore

import "github.com/kanishk-8/EcoCircle/internal/models"

// Reduce applies one transition and returns the next snapshot. It is a total
// pure function: transitions referencing entities absent from a view are
// no-ops for that view, never errors. Posts are cloned before mutation so a
// previously returned snapshot is never changed underneath its holder.
func Reduce(s Snapshot, a Action) Snapshot {
	switch act := a.(type) {
	case SetLoading:
		s.Loading = act.Loading

	case SetRefreshing:
		s.Refreshing = act.Refreshing

	case SetError:
		s.ErrMsg = act.Msg
		s.Loading = false
		s.Refreshing = false

	case ClearError:
		s.ErrMsg = ""

	case SetFeed:
		s.Feed = act.Posts
		s.Loading = false
		s.Refreshing = false

	case SetUserFeed:
		s.UserFeed = act.Posts
		s.Loading = false
		s.Refreshing = false

	case SetCurrentPost:
		s.CurrentPost = act.Post

	case SetComments:
		s.Comments = act.Comments

	case PostCreated:
		s.Feed = prependPost(s.Feed, act.Post)
		s.UserFeed = prependPost(s.UserFeed, act.Post)

	case PostUpdated:
		s = patchEverywhere(s, act.ID, func(p *models.Post) {
			act.Patch.Apply(p)
		})

	case PostDeleted:
		s.Feed = removePost(s.Feed, act.ID)
		s.UserFeed = removePost(s.UserFeed, act.ID)
		if s.CurrentPost != nil && s.CurrentPost.ID == act.ID {
			s.CurrentPost = nil
			s.Comments = nil
		}

	case LikeToggled:
		s = patchEverywhere(s, act.PostID, func(p *models.Post) {
			p.Liked = act.Liked
			p.LikesCount = floorAdd(p.LikesCount, act.Delta)
		})

	case CommentAdded:
		if s.CurrentPost != nil && s.CurrentPost.ID == act.Comment.PostID {
			s.Comments = appendComment(s.Comments, act.Comment)
		}
		s = patchEverywhere(s, act.Comment.PostID, func(p *models.Post) {
			p.CommentsCount = floorAdd(p.CommentsCount, 1)
		})

	case CommentUpdated:
		s.Comments = patchComment(s.Comments, act.ID, act.Content)

	case CommentDeleted:
		// Resolve the parent from current state before removing the row;
		// after removal the post ID is gone.
		parentID, found := commentParent(s.Comments, act.ID)
		if !found {
			break
		}
		s.Comments = removeComment(s.Comments, act.ID)
		s = patchEverywhere(s, parentID, func(p *models.Post) {
			p.CommentsCount = floorAdd(p.CommentsCount, -1)
		})

	case ClearCurrentPost:
		s.CurrentPost = nil
		s.Comments = nil
	}

	return s
}

// patchEverywhere applies fn to a cloned copy of the post in every view that
// contains it, keeping the cross-view consistency invariant in one transition.
func patchEverywhere(s Snapshot, postID uint, fn func(*models.Post)) Snapshot {
	s.Feed = patchPostList(s.Feed, postID, fn)
	s.UserFeed = patchPostList(s.UserFeed, postID, fn)
	if s.CurrentPost != nil && s.CurrentPost.ID == postID {
		cloned := *s.CurrentPost
		fn(&cloned)
		s.CurrentPost = &cloned
	}
	return s
}

func patchPostList(list []*models.Post, id uint, fn func(*models.Post)) []*models.Post {
	for i, p := range list {
		if p.ID != id {
			continue
		}
		out := make([]*models.Post, len(list))
		copy(out, list)
		cloned := *p
		fn(&cloned)
		out[i] = &cloned
		return out
	}
	return list
}

func prependPost(list []*models.Post, post *models.Post) []*models.Post {
	out := make([]*models.Post, 0, len(list)+1)
	out = append(out, post)
	return append(out, list...)
}

func removePost(list []*models.Post, id uint) []*models.Post {
	for i, p := range list {
		if p.ID != id {
			continue
		}
		out := make([]*models.Post, 0, len(list)-1)
		out = append(out, list[:i]...)
		return append(out, list[i+1:]...)
	}
	return list
}

func appendComment(list []*models.Comment, comment *models.Comment) []*models.Comment {
	out := make([]*models.Comment, 0, len(list)+1)
	out = append(out, list...)
	return append(out, comment)
}

func patchComment(list []*models.Comment, id uint, content string) []*models.Comment {
	for i, c := range list {
		if c.ID != id {
			continue
		}
		out := make([]*models.Comment, len(list))
		copy(out, list)
		cloned := *c
		cloned.Content = content
		out[i] = &cloned
		return out
	}
	return list
}

func removeComment(list []*models.Comment, id uint) []*models.Comment {
	for i, c := range list {
		if c.ID != id {
			continue
		}
		out := make([]*models.Comment, 0, len(list)-1)
		out = append(out, list[:i]...)
		return append(out, list[i+1:]...)
	}
	return list
}

func commentParent(list []*models.Comment, id uint) (uint, bool) {
	for _, c := range list {
		if c.ID == id {
			return c.PostID, true
		}
	}
	return 0, false
}

// floorAdd shifts a derived counter, flooring at zero. Undercounts from
// partial prior failures must never drive a counter negative.
func floorAdd(count, delta int) int {
	if count+delta < 0 {
		return 0
	}
	return count + delta
}
