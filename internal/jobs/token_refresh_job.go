package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/repository"
	"github.com/maheshrc27/creatorhub/internal/service"
)

type TokenRefreshJob struct {
	ca repository.ConnectedAccountRepository
	yt service.YoutubeService
	ig service.InstagramService
}

func NewTokenRefreshJob(
	ca repository.ConnectedAccountRepository,
	yt service.YoutubeService,
	ig service.InstagramService) *TokenRefreshJob {
	return &TokenRefreshJob{
		ca: ca,
		yt: yt,
		ig: ig,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.ca.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.ConnectedAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			switch acc.Platform {
			case models.PlatformYoutube:
				err := c.yt.RefreshYoutubeToken(ctx, acc.UserID, acc.AccessToken, acc.RefreshToken)
				if err != nil {
					slog.Info("Unable to refresh tokens for YouTube")
				}

			case models.PlatformInstagram:
				err := c.ig.RefreshInstagramToken(ctx, acc.UserID, acc.RefreshToken)
				if err != nil {
					slog.Info("Unable to refresh tokens for Instagram")
				}
			}
		}(acc)
	}

	wg.Wait()
}
