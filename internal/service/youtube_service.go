package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/repository"
	"github.com/maheshrc27/creatorhub/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var youtubeScopes = []string{
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/youtube.force-ssl",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type YoutubeService interface {
	YoutubeCallback(ctx context.Context, code string, userID int64) (err error)
	RefreshYoutubeToken(ctx context.Context, userID int64, accessToken, refreshToken string) error
	FetchMetrics(ctx context.Context, accessToken, refreshToken string) (*models.YoutubeMetrics, error)
}

type youtubeService struct {
	cfg config.Config
	ca  repository.ConnectedAccountRepository
}

func NewYoutubeService(cfg config.Config, ca repository.ConnectedAccountRepository) YoutubeService {
	return &youtubeService{
		cfg: cfg,
		ca:  ca,
	}
}

func (s *youtubeService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes:       youtubeScopes,
		Endpoint:     google.Endpoint,
	}
}

func (s *youtubeService) YoutubeCallback(ctx context.Context, code string, userID int64) (err error) {

	if code == "" {
		err = errors.New("code or state is empty")
		slog.Info(err.Error())
		return err
	}

	oauth2Config := s.oauthConfig()

	if oauth2Config.ClientID == "" || oauth2Config.ClientSecret == "" || oauth2Config.RedirectURL == "" {
		err = errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return err
	}

	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if token.RefreshToken == "" {
		err = errors.New("refresh token is empty")
		slog.Info(err.Error())
		return err
	}

	client := oauth2Config.Client(ctx, token)
	channel, err := getOwnChannel(ctx, client)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	thumbnail := ""
	if channel.Snippet.Thumbnails != nil && channel.Snippet.Thumbnails.Default != nil {
		thumbnail = channel.Snippet.Thumbnails.Default.Url
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"channel_id":       channel.Id,
		"title":            channel.Snippet.Title,
		"thumbnail":        thumbnail,
		"subscriber_count": channel.Statistics.SubscriberCount,
	})
	if err != nil {
		return err
	}

	accountInfo := &models.ConnectedAccount{
		UserID:          userID,
		Platform:        models.PlatformYoutube,
		AccountID:       channel.Id,
		AccountName:     channel.Snippet.Title,
		AccountUsername: channel.Snippet.Title,
		ProfilePicture:  thumbnail,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedRefreshToken,
		TokenExpiresAt:  token.Expiry,
		AccountMetadata: metadata,
	}

	_, err = s.ca.Connect(ctx, accountInfo)
	if err != nil {
		return err
	}

	return nil
}

func getOwnChannel(ctx context.Context, client *http.Client) (*youtube.Channel, error) {
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	resp, err := service.Channels.List([]string{"snippet", "statistics"}).Mine(true).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to fetch YouTube channel data: %v", err)
	}

	if len(resp.Items) == 0 {
		return nil, errors.New("no YouTube channel found for this account")
	}

	return resp.Items[0], nil
}

// FetchMetrics reads channel statistics and the five most recent uploads for
// the token's channel. The refresh token is carried for parity with the
// stored account but no refresh is attempted here; expired tokens fail the
// fetch and the refresh job picks them up.
func (s *youtubeService) FetchMetrics(ctx context.Context, accessToken, refreshToken string) (*models.YoutubeMetrics, error) {
	token := &oauth2.Token{AccessToken: accessToken}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	channelResp, err := service.Channels.List([]string{"statistics", "snippet"}).Mine(true).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to fetch YouTube channel data: %v", err)
	}
	if len(channelResp.Items) == 0 {
		return nil, errors.New("no channel found")
	}
	channel := channelResp.Items[0]

	searchResp, err := service.Search.List([]string{"snippet"}).
		ForMine(true).
		Type("video").
		Order("date").
		MaxResults(5).
		Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to fetch recent YouTube videos: %v", err)
	}

	recentVideos := make([]models.RecentVideo, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		thumbnail := ""
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Medium != nil {
			thumbnail = item.Snippet.Thumbnails.Medium.Url
		}
		videoID := ""
		if item.Id != nil {
			videoID = item.Id.VideoId
		}
		recentVideos = append(recentVideos, models.RecentVideo{
			ID:          videoID,
			Title:       item.Snippet.Title,
			Thumbnail:   thumbnail,
			PublishedAt: item.Snippet.PublishedAt,
		})
	}

	return &models.YoutubeMetrics{
		Subscribers:  int64(channel.Statistics.SubscriberCount),
		Views:        int64(channel.Statistics.ViewCount),
		Videos:       int64(channel.Statistics.VideoCount),
		RecentVideos: recentVideos,
		Notes:        "Real-time YouTube data",
	}, nil
}

func (s *youtubeService) RefreshYoutubeToken(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	conf := s.oauthConfig()

	decryptedRefreshToken, err := utils.Decrypt(refreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: decryptedRefreshToken})

	token, err := tokenSource.Token()
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	account := models.ConnectedAccount{
		AccessToken:    encryptedAccessToken,
		TokenExpiresAt: token.Expiry,
	}

	err = s.ca.SetToken(ctx, userID, accessToken, &account)
	if err != nil {
		return err
	}

	return nil
}

func RevokeGoogleAccess(accessToken string) error {
	url := "https://oauth2.googleapis.com/revoke"
	payload := []byte("token=" + accessToken)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to revoke token, status code: %d", resp.StatusCode)
	}
	return nil
}
