package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kanishk-8/EcoCircle/internal/models"
	"github.com/kanishk-8/EcoCircle/internal/storage"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, store *Store, userID uint) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:   userID,
		Title:    gofakeit.Sentence(3),
		Content:  gofakeit.Sentence(8),
		Category: "Recycling",
	}
	require.NoError(t, store.CreatePost(context.Background(), post))
	return post
}

func TestCreatePostRejectsEmptyBody(t *testing.T) {
	t.Parallel()
	store := New(setupTestDB(t))

	err := store.CreatePost(context.Background(), &models.Post{UserID: 1, Content: "  "})
	assert.ErrorIs(t, err, storage.ErrEmptyPost)
}

func TestCreatePostDefaultsCategory(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)

	post := &models.Post{UserID: user.ID, Content: "no category given"}
	require.NoError(t, store.CreatePost(context.Background(), post))

	got, err := store.GetPost(context.Background(), post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategory, got.Category)
}

func TestGetPostProjectsCountsAndLiked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	author := seedUser(t, db)
	viewer := seedUser(t, db)
	post := seedPost(t, db, store, author.ID)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.CreateComment(ctx, &models.Comment{
			PostID:  post.ID,
			UserID:  viewer.ID,
			Content: fmt.Sprintf("comment %d", i),
		}))
	}
	require.NoError(t, store.Like(ctx, viewer.ID, post.ID))

	got, err := store.GetPost(ctx, post.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.Liked)
	assert.Equal(t, author.Username, got.User.Username, "author preloaded")

	asAuthor, err := store.GetPost(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, asAuthor.Liked, "liked flag scoped to the viewer")

	anonymous, err := store.GetPost(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, anonymous.Liked)
	assert.Equal(t, 1, anonymous.LikesCount)
}

func TestGetPostNotFound(t *testing.T) {
	t.Parallel()
	store := New(setupTestDB(t))

	_, err := store.GetPost(context.Background(), 404, 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListPostsNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		p := seedPost(t, db, store, user.ID)
		// Space creation times out so the ordering is deterministic.
		require.NoError(t, db.Model(p).Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}

	posts, err := store.ListPosts(ctx, 2, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.True(t, posts[0].CreatedAt.After(posts[1].CreatedAt))

	rest, err := store.ListPosts(ctx, 2, 2, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.True(t, posts[1].CreatedAt.After(rest[0].CreatedAt))
}

func TestListUserPostsFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	alice := seedUser(t, db)
	bob := seedUser(t, db)
	seedPost(t, db, store, alice.ID)
	seedPost(t, db, store, bob.ID)
	seedPost(t, db, store, alice.ID)

	posts, err := store.ListUserPosts(ctx, alice.ID, 10, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, alice.ID, p.UserID)
	}
}

func TestUpdatePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)
	post := seedPost(t, db, store, user.ID)

	post.Title = "updated title"
	post.Content = "updated content"
	require.NoError(t, store.UpdatePost(ctx, post))

	got, err := store.GetPost(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "updated title", got.Title)
	assert.Equal(t, "updated content", got.Content)
}

func TestUpdatePostMissing(t *testing.T) {
	t.Parallel()
	store := New(setupTestDB(t))

	err := store.UpdatePost(context.Background(), &models.Post{ID: 404, Content: "ghost"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeletePostCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)
	post := seedPost(t, db, store, user.ID)

	comment := &models.Comment{PostID: post.ID, UserID: user.ID, Content: "child"}
	require.NoError(t, store.CreateComment(ctx, comment))
	require.NoError(t, store.Like(ctx, user.ID, post.ID))

	require.NoError(t, store.DeletePost(ctx, post.ID))

	_, err := store.GetPost(ctx, post.ID, 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	comments, err := store.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	liked, err := store.IsLiked(ctx, user.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestDeletePostMissing(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, New(setupTestDB(t)).DeletePost(context.Background(), 404), storage.ErrNotFound)
}

func TestLikeDuplicateInsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)
	post := seedPost(t, db, store, user.ID)

	require.NoError(t, store.Like(ctx, user.ID, post.ID))
	assert.ErrorIs(t, store.Like(ctx, user.ID, post.ID), storage.ErrAlreadyLiked,
		"conflict on the unique pair resolves without a row")

	got, err := store.GetPost(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount, "duplicate insert never double counts")
}

func TestUnlikeThenRelike(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)
	post := seedPost(t, db, store, user.ID)

	require.NoError(t, store.Like(ctx, user.ID, post.ID))
	require.NoError(t, store.Unlike(ctx, user.ID, post.ID))
	require.NoError(t, store.Unlike(ctx, user.ID, post.ID), "unlike is idempotent")

	// The hard delete must free the unique pair for a fresh like.
	require.NoError(t, store.Like(ctx, user.ID, post.ID))
}

func TestLikedPostIDsBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)

	var ids []uint
	for i := 0; i < 4; i++ {
		ids = append(ids, seedPost(t, db, store, user.ID).ID)
	}
	require.NoError(t, store.Like(ctx, user.ID, ids[1]))
	require.NoError(t, store.Like(ctx, user.ID, ids[3]))

	liked, err := store.LikedPostIDs(ctx, user.ID, ids)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{ids[1], ids[3]}, liked)

	none, err := store.LikedPostIDs(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCommentsOldestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)
	post := seedPost(t, db, store, user.ID)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateComment(ctx, &models.Comment{
			PostID:  post.ID,
			UserID:  user.ID,
			Content: fmt.Sprintf("reply %d", i),
		}))
	}

	comments, err := store.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "reply 0", comments[0].Content)
	assert.Equal(t, user.Username, comments[0].User.Username)
}

func TestUpdateCommentMissing(t *testing.T) {
	t.Parallel()
	err := New(setupTestDB(t)).UpdateComment(context.Background(), &models.Comment{ID: 404, Content: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteComment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	store := New(db)
	user := seedUser(t, db)
	post := seedPost(t, db, store, user.ID)

	comment := &models.Comment{PostID: post.ID, UserID: user.ID, Content: "temp"}
	require.NoError(t, store.CreateComment(ctx, comment))
	require.NoError(t, store.DeleteComment(ctx, comment.ID))
	assert.ErrorIs(t, store.DeleteComment(ctx, comment.ID), storage.ErrNotFound)

	got, err := store.GetPost(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount, "soft-deleted comment excluded from the count")
}
