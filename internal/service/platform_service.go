package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/repository"
	"github.com/maheshrc27/creatorhub/pkg/utils"
)

const (
	GOOGLE_AUTH_URL    = "https://accounts.google.com/o/oauth2/v2/auth"
	INSTAGRAM_AUTH_URL = "https://api.instagram.com/oauth/authorize"
)

var ErrPlatformNotConfigured = errors.New("platform credentials not configured")

type PlatformService interface {
	GetAuthURL(ctx context.Context, platform, tokenString string) (string, error)
	List(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error)
	Disconnect(ctx context.Context, userID, accountID int64) error
}

type platformService struct {
	cfg config.Config
	ca  repository.ConnectedAccountRepository
}

func NewPlatformService(cfg config.Config, ca repository.ConnectedAccountRepository) PlatformService {
	return &platformService{
		cfg: cfg,
		ca:  ca,
	}
}

func (s *platformService) GetAuthURL(ctx context.Context, platform, tokenString string) (string, error) {
	switch platform {
	case models.PlatformInstagram:
		if s.cfg.InstagramClientID == "" {
			return "", ErrPlatformNotConfigured
		}

		params := url.Values{}
		params.Add("client_id", s.cfg.InstagramClientID)
		params.Add("scope", "user_profile,user_media")
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.InstagramRedirectURI)
		params.Add("state", tokenString)

		return fmt.Sprintf("%s?%s", INSTAGRAM_AUTH_URL, params.Encode()), nil

	case models.PlatformYoutube:
		if s.cfg.GoogleClientID == "" {
			return "", ErrPlatformNotConfigured
		}

		params := url.Values{}
		params.Add("client_id", s.cfg.GoogleClientID)
		params.Add("redirect_uri", s.cfg.GoogleRedirectURI)
		params.Add("response_type", "code")
		params.Add("scope", strings.Join(youtubeScopes, " "))
		params.Add("state", tokenString)
		params.Add("access_type", "offline")
		params.Add("prompt", "consent")

		return fmt.Sprintf("%s?%s", GOOGLE_AUTH_URL, params.Encode()), nil

	default:
		return "", fmt.Errorf("unknown platform: %s", platform)
	}
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error) {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.ca.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting connected accounts")
	}

	return accounts, nil
}

// Disconnect revokes upstream access where the platform supports it and
// flips is_active off. The row stays for audit.
func (s *platformService) Disconnect(ctx context.Context, userID, accountID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if accountID == 0 {
		err = errors.New("AccountID is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.ca.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("Connected account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	accountInfo, err := s.ca.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("Unable to get connected account info")
	}

	decryptedAccessToken, err := utils.Decrypt(accountInfo.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	if accountInfo.Platform == models.PlatformYoutube {
		err = RevokeGoogleAccess(decryptedAccessToken)
		if err != nil {
			slog.Info(err.Error())
			return fmt.Errorf("Unable to revoke access")
		}
	}

	err = s.ca.Deactivate(ctx, accountID)
	if err != nil {
		return fmt.Errorf("Error removing account info")
	}

	return nil
}
