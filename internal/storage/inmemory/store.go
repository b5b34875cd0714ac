// Package inmemory implements the storage contract entirely in process
// memory. It backs the facade tests and the engine's offline mode, where no
// remote store is configured.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kanishk-8/EcoCircle/internal/models"
	"github.com/kanishk-8/EcoCircle/internal/storage"
)

type likeKey struct {
	userID uint
	postID uint
}

// Store implements storage.ContentStore in memory.
type Store struct {
	mu       sync.RWMutex
	nextID   uint
	users    map[uint]models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	likes    map[likeKey]time.Time
	nowFn    func() time.Time
}

// New creates an empty in-memory content store.
func New() *Store {
	return &Store{
		nextID:   1,
		users:    make(map[uint]models.User),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		likes:    make(map[likeKey]time.Time),
		nowFn:    time.Now,
	}
}

// PutUser registers an author so denormalized display fields resolve.
func (s *Store) PutUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *Store) allocID() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if !post.HasBody() {
		return storage.ErrEmptyPost
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *post
	stored.ID = s.allocID()
	if stored.Category == "" {
		stored.Category = models.DefaultCategory
	}
	now := s.nowFn()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.posts[stored.ID] = &stored
	post.ID = stored.ID
	post.CreatedAt = stored.CreatedAt
	post.UpdatedAt = stored.UpdatedAt
	return nil
}

// view materializes the aggregate read projection for one post.
func (s *Store) view(post *models.Post, viewerID uint) *models.Post {
	out := *post
	out.User = s.users[post.UserID]
	out.CommentsCount = 0
	for _, c := range s.comments {
		if c.PostID == post.ID {
			out.CommentsCount++
		}
	}
	out.LikesCount = 0
	for k := range s.likes {
		if k.postID == post.ID {
			out.LikesCount++
		}
	}
	_, out.Liked = s.likes[likeKey{userID: viewerID, postID: post.ID}]
	return &out
}

func (s *Store) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.view(post, viewerID), nil
}

func (s *Store) listLocked(viewerID uint, filter func(*models.Post) bool) []*models.Post {
	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter == nil || filter(p) {
			out = append(out, s.view(p, viewerID))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func page(posts []*models.Post, limit, offset int) []*models.Post {
	if offset >= len(posts) {
		return []*models.Post{}
	}
	end := len(posts)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return posts[offset:end]
}

func (s *Store) ListPosts(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.listLocked(viewerID, nil), limit, offset), nil
}

func (s *Store) ListUserPosts(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return page(s.listLocked(viewerID, func(p *models.Post) bool { return p.UserID == userID }), limit, offset), nil
}

func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	if !post.HasBody() {
		return storage.ErrEmptyPost
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.Title = post.Title
	existing.Content = post.Content
	existing.ImageURL = post.ImageURL
	existing.Category = post.Category
	existing.UpdatedAt = s.nowFn()
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for k := range s.likes {
		if k.postID == id {
			delete(s.likes, k)
		}
	}
	return nil
}

func (s *Store) Like(ctx context.Context, userID, postID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return storage.ErrNotFound
	}
	key := likeKey{userID: userID, postID: postID}
	if _, ok := s.likes[key]; ok {
		return storage.ErrAlreadyLiked
	}
	s.likes[key] = s.nowFn()
	return nil
}

func (s *Store) Unlike(ctx context.Context, userID, postID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes, likeKey{userID: userID, postID: postID})
	return nil
}

func (s *Store) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.likes[likeKey{userID: userID, postID: postID}]
	return ok, nil
}

func (s *Store) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var liked []uint
	for _, id := range postIDs {
		if _, ok := s.likes[likeKey{userID: userID, postID: id}]; ok {
			liked = append(liked, id)
		}
	}
	return liked, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[comment.PostID]; !ok {
		return storage.ErrNotFound
	}
	stored := *comment
	stored.ID = s.allocID()
	now := s.nowFn()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.comments[stored.ID] = &stored
	comment.ID = stored.ID
	comment.CreatedAt = stored.CreatedAt
	comment.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *comment
	out.User = s.users[comment.UserID]
	return &out, nil
}

func (s *Store) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Comment, 0)
	for _, c := range s.comments {
		if c.PostID != postID {
			continue
		}
		cp := *c
		cp.User = s.users[c.UserID]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.comments[comment.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.Content = comment.Content
	existing.UpdatedAt = s.nowFn()
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}
