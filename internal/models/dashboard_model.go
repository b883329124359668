package models

import "time"

const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"

	// CachePlatform marks the single merged cache row per user.
	CachePlatform = "unified"
)

type RecentPost struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	Likes     int64  `json:"likes"`
	Comments  int64  `json:"comments"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

type InstagramMetrics struct {
	Connected      bool         `json:"connected"`
	Followers      *int64       `json:"followers"`
	Posts          int          `json:"posts"`
	EngagementRate float64      `json:"engagement_rate"`
	RecentPosts    []RecentPost `json:"recent_posts"`
	Notes          string       `json:"notes"`
}

type RecentVideo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	PublishedAt string `json:"published_at"`
}

type YoutubeMetrics struct {
	Connected    bool          `json:"connected"`
	Subscribers  int64         `json:"subscribers"`
	Views        int64         `json:"views"`
	Videos       int64         `json:"videos"`
	RecentVideos []RecentVideo `json:"recent_videos"`
	Notes        string        `json:"notes"`
}

type TrendingBlock struct {
	Topics  []string `json:"topics"`
	Sources []string `json:"sources"`
	Notes   string   `json:"notes"`
}

type ContentIdea struct {
	Title           string   `json:"title"`
	Script          string   `json:"script"`
	Caption         string   `json:"caption"`
	ThumbnailPrompt string   `json:"thumbnail_prompt"`
	Hashtags        []string `json:"hashtags"`
}

type AIBlock struct {
	Enabled bool          `json:"enabled"`
	Ideas   []ContentIdea `json:"ideas"`
	Message string        `json:"message"`
}

type DashboardSnapshot struct {
	Fallback  bool             `json:"fallback"`
	Cached    bool             `json:"cached,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Instagram InstagramMetrics `json:"instagram"`
	Youtube   YoutubeMetrics   `json:"youtube"`
	Trending  TrendingBlock    `json:"trending"`
	AI        AIBlock          `json:"ai"`
	Errors    []string         `json:"errors"`
}

type DashboardCache struct {
	UserID       int64             `db:"user_id" json:"user_id"`
	Platform     string            `db:"platform" json:"platform"`
	Data         DashboardSnapshot `db:"data" json:"data"`
	LastSynced   time.Time         `db:"last_synced" json:"last_synced"`
	SyncStatus   string            `db:"sync_status" json:"sync_status"`
	ErrorMessage string            `db:"error_message" json:"error_message"`
}

// DefaultDashboard is the placeholder payload rendered while no platform
// data is available. Every aggregation pass starts from a fresh copy and
// overwrites blocks per source.
func DefaultDashboard() *DashboardSnapshot {
	followers := int64(12500)
	return &DashboardSnapshot{
		Fallback:  true,
		Timestamp: time.Now().UTC(),
		Instagram: InstagramMetrics{
			Connected:      false,
			Followers:      &followers,
			Posts:          145,
			EngagementRate: 8.4,
			RecentPosts:    []RecentPost{},
			Notes:          "Default data - connect Instagram for real metrics",
		},
		Youtube: YoutubeMetrics{
			Connected:    false,
			Subscribers:  8500,
			Views:        145000,
			Videos:       67,
			RecentVideos: []RecentVideo{},
			Notes:        "Default data - connect YouTube for real metrics",
		},
		Trending: TrendingBlock{
			Topics:  []string{"AI Tools", "Content Creation", "Social Media Tips"},
			Sources: []string{},
			Notes:   "Default topics - trending scraper not configured",
		},
		AI: AIBlock{
			Enabled: false,
			Ideas:   []ContentIdea{},
			Message: "Connect platforms and enable AI for personalized suggestions",
		},
		Errors: []string{},
	}
}
