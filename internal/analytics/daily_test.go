package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/kanishk-8/EcoCircle/internal/cache"
	"github.com/kanishk-8/EcoCircle/internal/models"
	"github.com/kanishk-8/EcoCircle/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// historyStub serves a fixed post history; only ListUserPosts is exercised.
type historyStub struct {
	storage.ContentStore
	posts []*models.Post
}

func (s *historyStub) ListUserPosts(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) {
	return s.posts, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Tests share the package-level cache client; none run in parallel.
func withCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	prev := cache.GetClient()
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(prev) })
}

func postsOn(now time.Time, daysAgo []int, categories []string) []*models.Post {
	var posts []*models.Post
	for i, d := range daysAgo {
		cat := "General"
		if i < len(categories) {
			cat = categories[i]
		}
		posts = append(posts, &models.Post{
			ID:        uint(i + 1),
			UserID:    7,
			Content:   "eco",
			Category:  cat,
			CreatedAt: now.AddDate(0, 0, -d),
		})
	}
	return posts
}

func TestTodayAfterNoonComputesAndCaches(t *testing.T) {
	withCache(t)
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	store := &historyStub{posts: postsOn(now, []int{0, 1, 2}, []string{"Recycling", "Gardening", "Energy"})}
	svc := NewService(store, fixedClock(now))

	daily, err := svc.Today(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", daily.Date)
	assert.False(t, daily.Provisional)
	assert.Equal(t, 3, daily.PostCount)
	assert.Equal(t, 3, daily.Categories)
	assert.Equal(t, 3, daily.StreakDays)
	// 3 posts * 10 + 3 categories * 5 + 3 streak days * 4
	assert.Equal(t, 57, daily.Score)
	assert.NotEmpty(t, daily.Tip)
	assert.NotEmpty(t, daily.Challenge)

	// A second read the same day comes from the cache even if history moved.
	store.posts = nil
	again, err := svc.Today(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, again.PostCount)
}

func TestTodayBeforeNoonServesYesterday(t *testing.T) {
	withCache(t)

	afternoon := time.Date(2026, 8, 27, 14, 0, 0, 0, time.UTC)
	store := &historyStub{posts: postsOn(afternoon, []int{0, 1}, []string{"Recycling", "Recycling"})}
	svc := NewService(store, fixedClock(afternoon))

	computed, err := svc.Today(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "2026-08-27", computed.Date)

	// Next morning, before the noon gate, yesterday's result is served as is.
	morning := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc = NewService(&historyStub{}, fixedClock(morning))

	daily, err := svc.Today(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-27", daily.Date)
	assert.Equal(t, 2, daily.PostCount, "cached result, not recomputed")
	assert.False(t, daily.Provisional)
}

func TestTodayBeforeNoonWithoutHistoryIsProvisional(t *testing.T) {
	withCache(t)
	morning := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)

	store := &historyStub{posts: postsOn(morning, []int{0}, []string{"Energy"})}
	svc := NewService(store, fixedClock(morning))

	daily, err := svc.Today(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-27", daily.Date, "labelled as the last completed day")
	assert.True(t, daily.Provisional)

	var cached Daily
	assert.False(t, cache.Get(context.Background(), cache.AnalyticsKey(7, "2026-08-27"), &cached),
		"provisional results are never cached")
}

func TestComputeScoreCaps(t *testing.T) {
	withCache(t)
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	// Ten posts across ten distinct categories, ten-day streak: every
	// component saturates.
	days := []int{0, 0, 1, 1, 2, 2, 3, 4, 5, 6}
	cats := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	posts := postsOn(now, days, cats)
	for d := 8; d <= 10; d++ {
		posts = append(posts, &models.Post{UserID: 7, Content: "old", Category: "k", CreatedAt: now.AddDate(0, 0, -d)})
	}

	svc := NewService(&historyStub{posts: posts}, fixedClock(now))
	daily, err := svc.Today(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 100, daily.Score)
	assert.Equal(t, 10, daily.PostCount, "posts outside the seven-day window excluded")
	assert.Equal(t, 7, daily.StreakDays)
}

func TestStreakBreaks(t *testing.T) {
	withCache(t)
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	// Posted yesterday and three days ago; the gap ends the streak at one.
	svc := NewService(&historyStub{posts: postsOn(now, []int{1, 3}, []string{"a", "b"})}, fixedClock(now))
	daily, err := svc.Today(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, daily.StreakDays)
}

func TestNoHistory(t *testing.T) {
	withCache(t)
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	svc := NewService(&historyStub{}, fixedClock(now))
	daily, err := svc.Today(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, daily.Score)
	assert.Equal(t, 0, daily.PostCount)
	assert.Equal(t, 0, daily.StreakDays)
	assert.NotEmpty(t, daily.Challenge, "a challenge is always offered")
}
