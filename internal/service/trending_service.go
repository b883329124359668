package service

import (
	"context"
	"log/slog"

	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	trendingRegion   = "US"
	trendingCategory = "22" // People & Blogs
)

var defaultTrendingTopics = []string{
	"AI Content Creation",
	"Short-Form Video Tips",
	"Creator Economy 2025",
	"Social Media Growth Hacks",
	"Monetization Strategies",
}

type TrendingService interface {
	FetchTrending(ctx context.Context) (*models.TrendingBlock, error)
}

type trendingService struct {
	cfg config.Config
}

func NewTrendingService(cfg config.Config) TrendingService {
	return &trendingService{cfg: cfg}
}

// FetchTrending never fails outward. Any problem, including a missing API
// key, degrades to the static default topic list.
func (s *trendingService) FetchTrending(ctx context.Context) (*models.TrendingBlock, error) {
	if s.cfg.YoutubeAPIKey == "" {
		return defaultTrending(), nil
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(s.cfg.YoutubeAPIKey))
	if err != nil {
		slog.Info(err.Error())
		return defaultTrending(), nil
	}

	resp, err := service.Videos.List([]string{"snippet"}).
		Chart("mostPopular").
		RegionCode(trendingRegion).
		VideoCategoryId(trendingCategory).
		MaxResults(10).
		Do()
	if err != nil {
		slog.Info(err.Error())
		return defaultTrending(), nil
	}

	topics := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet != nil {
			topics = append(topics, item.Snippet.Title)
		}
	}
	if len(topics) == 0 {
		return defaultTrending(), nil
	}
	if len(topics) > 5 {
		topics = topics[:5]
	}

	return &models.TrendingBlock{
		Topics:  topics,
		Sources: []string{"YouTube Trending"},
		Notes:   "Fetched from YouTube Trending API",
	}, nil
}

func defaultTrending() *models.TrendingBlock {
	topics := make([]string, len(defaultTrendingTopics))
	copy(topics, defaultTrendingTopics)
	return &models.TrendingBlock{
		Topics:  topics,
		Sources: []string{"Default"},
		Notes:   "Default trending topics - configure YOUTUBE_API_KEY for real data",
	}
}
