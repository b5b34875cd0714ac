package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/kanishk-8/EcoCircle/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// The projection must fold counts and the viewer's liked flag into the post
// query itself; a per-post follow-up query would multiply round trips by the
// page size.
func TestGetPostSingleQueryProjection(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count, (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = $1) AS liked FROM "posts" WHERE "posts"."id" = $2 AND "posts"."deleted_at" IS NULL ORDER BY "posts"."id" LIMIT $3`,
	)).
		WithArgs(2, 1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "comments_count", "likes_count", "liked"}).
			AddRow(1, 10, "hello", 3, 5, true))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "author"))

	post, err := store.GetPost(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, post.CommentsCount)
	assert.Equal(t, 5, post.LikesCount)
	assert.True(t, post.Liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeUsesConflictClause(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO "likes" ("user_id","post_id","created_at") VALUES ($1,$2,$3) ON CONFLICT ("user_id","post_id") DO NOTHING RETURNING "id"`,
	)).
		WithArgs(2, 1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	require.NoError(t, store.Like(context.Background(), 2, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikedPostIDsSingleBatchedQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "post_id" FROM "likes" WHERE user_id = $1 AND post_id IN ($2,$3,$4)`,
	)).
		WithArgs(2, 1, 2, 3).
		WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow(2))

	liked, err := store.LikedPostIDs(context.Background(), 2, []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePostMissingRow(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.UpdatePost(context.Background(), &models.Post{ID: 404, Content: "ghost"})
	assert.Error(t, err)
}
