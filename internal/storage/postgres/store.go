// Package postgres implements the storage contract over the managed
// relational backend through GORM.
package postgres

import (
	"context"
	"errors"

	"github.com/kanishk-8/EcoCircle/internal/models"
	"github.com/kanishk-8/EcoCircle/internal/observability"
	"github.com/kanishk-8/EcoCircle/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements storage.ContentStore.
type Store struct {
	db   *gorm.DB
	logs *observability.RepoLogger
}

// New creates a content store over the given database handle.
func New(db *gorm.DB) *Store {
	return &Store{
		db:   db,
		logs: observability.NewRepoLogger("posts"),
	}
}

// Migrate creates or updates the schema for all engine-owned tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	)
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if !post.HasBody() {
		return storage.ErrEmptyPost
	}
	if post.Category == "" {
		post.Category = models.DefaultCategory
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		s.logs.LogError(ctx, err, "create")
		return err
	}
	s.logs.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "user_id": post.UserID})
	return nil
}

func (s *Store) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := s.applyPostDetails(s.db.WithContext(ctx), viewerID).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.applyPostDetails(s.db.WithContext(ctx), viewerID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

func (s *Store) ListUserPosts(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.applyPostDetails(s.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (s *Store) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	if !post.HasBody() {
		return storage.ErrEmptyPost
	}
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"title":     post.Title,
			"content":   post.Content,
			"image_url": post.ImageURL,
			"category":  post.Category,
		})
	if res.Error != nil {
		s.logs.LogError(ctx, res.Error, "update")
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	s.logs.LogUpdate(ctx, map[string]interface{}{"post_id": post.ID})
	return nil
}

// DeletePost removes the post row together with its comments and likes in one
// transaction, mirroring the store-side cascade rule.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("post_id = ?", id).Delete(&models.Like{}).Error
	})
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logs.LogError(ctx, err, "delete")
		}
		return err
	}
	s.logs.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

func (s *Store) Like(ctx context.Context, userID, postID uint) error {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&models.Like{UserID: userID, PostID: postID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrAlreadyLiked
	}
	return nil
}

func (s *Store) Unlike(ctx context.Context, userID, postID uint) error {
	// Likes are hard-deleted; there is no undo for an endorsement.
	return s.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
}

func (s *Store) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var likedPostIDs []uint
	err := s.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &likedPostIDs).Error
	return likedPostIDs, err
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, translate(err)
}

func (s *Store) UpdateComment(ctx context.Context, comment *models.Comment) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", comment.Content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
