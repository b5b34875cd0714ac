package cache

import (
	"fmt"
	"time"
)

const (
	feedKeyPrefix      = "feed:recent"
	userFeedKeyPrefix  = "feed:user:%d"
	analyticsKeyPrefix = "analytics:%d:%s"
)

const (
	// FeedTTL is short: the feed is refetched often and staleness is visible.
	FeedTTL = 2 * time.Minute
	// AnalyticsTTL spans the daily computation window.
	AnalyticsTTL = 36 * time.Hour
)

// FeedKey caches the first page of the global feed.
func FeedKey() string {
	return feedKeyPrefix
}

// UserFeedKey caches the first page of one user's feed.
func UserFeedKey(userID uint) string {
	return fmt.Sprintf(userFeedKeyPrefix, userID)
}

// AnalyticsKey caches one user's daily analytics for a given date (YYYY-MM-DD).
func AnalyticsKey(userID uint, date string) string {
	return fmt.Sprintf(analyticsKeyPrefix, userID, date)
}
