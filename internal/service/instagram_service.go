package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/repository"
	"github.com/maheshrc27/creatorhub/internal/transfer"
	"github.com/maheshrc27/creatorhub/pkg/utils"
)

const instagramMediaFields = "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp,like_count,comments_count"

type InstagramService interface {
	InstagramCallback(ctx context.Context, code string, userID int64) (err error)
	RefreshInstagramToken(ctx context.Context, userID int64, refreshToken string) error
	FetchMetrics(ctx context.Context, accessToken string) (*models.InstagramMetrics, error)
}

type instagramService struct {
	cfg config.Config
	ca  repository.ConnectedAccountRepository
}

func NewInstagramService(cfg config.Config, ca repository.ConnectedAccountRepository) InstagramService {
	return &instagramService{
		cfg: cfg,
		ca:  ca,
	}
}

func (ig *instagramService) InstagramCallback(ctx context.Context, code string, userID int64) (err error) {

	if code == "" {
		err = errors.New("code or state is empty")
		slog.Info(err.Error())
		return err
	}

	if userID == 0 {
		err = errors.New("User not found")
		slog.Info(err.Error())
		return err
	}

	token, err := ig.ExchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := ig.GetInstagramUserInfo(token.LongLivedToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(map[string]string{
		"user_id":  userInfo.UserID,
		"username": userInfo.Username,
	})
	if err != nil {
		return err
	}

	accountInfo := &models.ConnectedAccount{
		UserID:          userID,
		Platform:        models.PlatformInstagram,
		AccountID:       userInfo.UserID,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Username,
		ProfilePicture:  userInfo.ProfilePicture,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedAccessToken,
		TokenExpiresAt:  token.ExpiresAt,
		AccountMetadata: metadata,
	}

	_, err = ig.ca.Connect(ctx, accountInfo)
	if err != nil {
		return err
	}

	return nil
}

func (ig *instagramService) getShortLivedToken(code string) (*transfer.InstagramToken, error) {
	data := url.Values{}
	data.Set("client_id", ig.cfg.InstagramClientID)
	data.Set("client_secret", ig.cfg.InstagramClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", ig.cfg.InstagramRedirectURI)
	data.Set("code", code)

	resp, err := http.Post(
		"https://api.instagram.com/oauth/access_token",
		"application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to get short-lived token: %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		UserID      int    `json:"user_id"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %v", err)
	}

	token := &transfer.InstagramToken{
		UserID:      result.UserID,
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	return token, nil
}

func (ig *instagramService) getLongLivedToken(shortLivedToken string) (*struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}, error) {
	url := fmt.Sprintf(
		"https://graph.instagram.com/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		ig.cfg.InstagramClientSecret,
		shortLivedToken,
	)

	resp, err := http.Get(url)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to get long-lived token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("error response from Instagram: %s (status code: %d)", body, resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode long-lived token response: %v", err)
	}

	return &struct {
		AccessToken string    `json:"access_token"`
		ExpiresAt   time.Time `json:"expires_at"`
	}{
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Second * time.Duration(result.ExpiresIn)),
	}, nil
}

func (ig *instagramService) ExchangeCodeForToken(ctx context.Context, code string) (*transfer.InstagramToken, error) {

	shortLivedToken, err := ig.getShortLivedToken(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get short-lived token: %v", err)
	}

	longLivedToken, err := ig.getLongLivedToken(shortLivedToken.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %v", err)
	}

	token := &transfer.InstagramToken{
		AccessToken:    longLivedToken.AccessToken,
		LongLivedToken: longLivedToken.AccessToken,
		ExpiresAt:      longLivedToken.ExpiresAt,
	}

	return token, nil
}

func (ig *instagramService) GetInstagramUserInfo(accessToken string) (*transfer.InstagramUserInfo, error) {
	var userInfo transfer.InstagramUserInfo

	reqUrl := fmt.Sprintf(
		"https://graph.instagram.com/me?fields=id,username,name,account_type,profile_picture_url&access_token=%s",
		accessToken,
	)

	resp, err := http.Get(reqUrl)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}

// FetchMetrics pulls the media listing for the token's account and reduces it
// to the dashboard block. It performs no caching or retry; any non-2xx
// response surfaces to the caller.
func (ig *instagramService) FetchMetrics(ctx context.Context, accessToken string) (*models.InstagramMetrics, error) {
	reqUrl := fmt.Sprintf(
		"https://graph.instagram.com/me/media?fields=%s&access_token=%s",
		instagramMediaFields,
		accessToken,
	)

	req, err := http.NewRequestWithContext(ctx, "GET", reqUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to fetch Instagram data: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch Instagram data (status code: %d)", resp.StatusCode)
	}

	var mediaList transfer.InstagramMediaList
	if err := json.NewDecoder(resp.Body).Decode(&mediaList); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode Instagram media response: %v", err)
	}

	return BuildInstagramMetrics(mediaList.Data), nil
}

// BuildInstagramMetrics reduces a media listing to the dashboard block.
// Engagement rate is average(likes+comments per post)/100 rounded to one
// decimal. Follower counts are not available through this token scope.
func BuildInstagramMetrics(posts []transfer.InstagramMedia) *models.InstagramMetrics {
	var totalEngagement int64
	for _, post := range posts {
		totalEngagement += post.LikeCount + post.CommentsCount
	}

	var rate float64
	if len(posts) > 0 {
		avg := float64(totalEngagement) / float64(len(posts))
		rate = math.Round(avg/100*10) / 10
	}

	recent := posts
	if len(recent) > 5 {
		recent = recent[:5]
	}

	recentPosts := make([]models.RecentPost, 0, len(recent))
	for _, post := range recent {
		thumbnail := post.ThumbnailURL
		if thumbnail == "" {
			thumbnail = post.MediaURL
		}
		recentPosts = append(recentPosts, models.RecentPost{
			ID:        post.ID,
			Caption:   truncateCaption(post.Caption, 100),
			Likes:     post.LikeCount,
			Comments:  post.CommentsCount,
			URL:       post.Permalink,
			Thumbnail: thumbnail,
		})
	}

	return &models.InstagramMetrics{
		Followers:      nil,
		Posts:          len(posts),
		EngagementRate: rate,
		RecentPosts:    recentPosts,
		Notes:          "Followers require Instagram Graph API with business account",
	}
}

func truncateCaption(caption string, max int) string {
	runes := []rune(caption)
	if len(runes) <= max {
		return caption
	}
	return string(runes[:max])
}

func (s *instagramService) RefreshInstagramToken(ctx context.Context, userID int64, refreshToken string) error {

	decryptedRefreshToken, err := utils.Decrypt(refreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	url := fmt.Sprintf(
		"https://graph.instagram.com/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		decryptedRefreshToken,
	)

	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	ExpiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))

	encryptedAccessToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	account := models.ConnectedAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedAccessToken,
		TokenExpiresAt: ExpiresAt,
	}

	err = s.ca.SetToken(ctx, userID, refreshToken, &account)
	if err != nil {
		return err
	}

	return nil
}
