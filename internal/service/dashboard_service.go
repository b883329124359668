package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/repository"
	"github.com/maheshrc27/creatorhub/pkg/utils"
)

// CacheFreshness is the sole staleness rule: a cache row younger than this
// is served as-is, anything older triggers a full aggregation pass.
const CacheFreshness = 15 * time.Minute

type DashboardService interface {
	Get(ctx context.Context, userID int64) *models.DashboardSnapshot
	Sync(ctx context.Context, userID int64) *models.DashboardSnapshot
}

type dashboardService struct {
	cfg config.Config
	ca  repository.ConnectedAccountRepository
	dc  repository.DashboardCacheRepository
	ig  InstagramService
	yt  YoutubeService
	tr  TrendingService
	ai  AIService
	ar  *ArchiveService
}

func NewDashboardService(
	cfg config.Config,
	ca repository.ConnectedAccountRepository,
	dc repository.DashboardCacheRepository,
	ig InstagramService,
	yt YoutubeService,
	tr TrendingService,
	ai AIService,
	ar *ArchiveService) DashboardService {
	return &dashboardService{
		cfg: cfg,
		ca:  ca,
		dc:  dc,
		ig:  ig,
		yt:  yt,
		tr:  tr,
		ai:  ai,
		ar:  ar,
	}
}

// Get serves the dashboard for the resolved user. An unresolved identity
// (userID 0) short-circuits to the default snapshot without touching the
// store; a fresh cache row is returned annotated cached=true with zero
// external fetches.
func (s *dashboardService) Get(ctx context.Context, userID int64) *models.DashboardSnapshot {
	if userID == 0 {
		return models.DefaultDashboard()
	}

	cached, err := s.dc.GetLatestByUserID(ctx, userID)
	if err != nil {
		slog.Info(err.Error())
	}
	if cached != nil && time.Since(cached.LastSynced) < CacheFreshness {
		snapshot := cached.Data
		snapshot.Cached = true
		return &snapshot
	}

	return s.refresh(ctx, userID)
}

// Sync is the forced-refresh path: identical aggregation, freshness check
// bypassed. The only way to refresh inside the 15-minute window.
func (s *dashboardService) Sync(ctx context.Context, userID int64) *models.DashboardSnapshot {
	if userID == 0 {
		return models.DefaultDashboard()
	}

	return s.refresh(ctx, userID)
}

func (s *dashboardService) refresh(ctx context.Context, userID int64) *models.DashboardSnapshot {
	accounts, err := s.ca.ListActiveByUserID(ctx, userID)
	if err != nil {
		slog.Info(err.Error())
		dashboard := models.DefaultDashboard()
		dashboard.Errors = []string{err.Error()}
		return dashboard
	}

	dashboard := models.DefaultDashboard()
	dashboard.Fallback = false

	var igAccount, ytAccount *models.ConnectedAccount
	for _, acc := range accounts {
		switch acc.Platform {
		case models.PlatformInstagram:
			igAccount = acc
		case models.PlatformYoutube:
			ytAccount = acc
		}
	}

	var mu sync.Mutex
	fetchErrors := []string{}
	addError := func(msg string) {
		mu.Lock()
		fetchErrors = append(fetchErrors, msg)
		mu.Unlock()
	}

	// The three fetch phases are independent; a failure in one never stops
	// the others. AI runs afterwards because its prompt consumes their
	// results.
	var wg sync.WaitGroup

	if igAccount != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()

			metrics, err := s.fetchInstagram(ctx, igAccount)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fetchErrors = append(fetchErrors, "Instagram: "+err.Error())
				dashboard.Instagram.Notes = "Failed to fetch - using defaults"
				return
			}
			metrics.Connected = true
			dashboard.Instagram = *metrics
		}()
	}

	if ytAccount != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()

			metrics, err := s.fetchYoutube(ctx, ytAccount)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fetchErrors = append(fetchErrors, "YouTube: "+err.Error())
				dashboard.Youtube.Notes = "Failed to fetch - using defaults"
				return
			}
			metrics.Connected = true
			dashboard.Youtube = *metrics
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		trending, err := s.tr.FetchTrending(ctx)
		if err != nil {
			addError("Trending: " + err.Error())
			return
		}
		mu.Lock()
		dashboard.Trending = *trending
		mu.Unlock()
	}()

	wg.Wait()

	if s.ai.Enabled() {
		ideas, err := s.ai.GenerateIdeas(ctx, dashboard)
		if err != nil {
			addError("AI: " + err.Error())
			dashboard.AI.Message = "AI unavailable: " + err.Error()
		} else {
			dashboard.AI = models.AIBlock{
				Enabled: true,
				Ideas:   ideas,
				Message: "AI suggestions generated",
			}
		}
	}

	dashboard.Errors = fetchErrors
	dashboard.Timestamp = time.Now().UTC()

	syncStatus := models.SyncStatusSuccess
	if len(fetchErrors) > 0 {
		syncStatus = models.SyncStatusPartial
	}

	s.archivePrevious(ctx, userID)

	cache := &models.DashboardCache{
		UserID:       userID,
		Platform:     models.CachePlatform,
		Data:         *dashboard,
		LastSynced:   time.Now().UTC(),
		SyncStatus:   syncStatus,
		ErrorMessage: strings.Join(fetchErrors, "; "),
	}
	if err := s.dc.Upsert(ctx, cache); err != nil {
		slog.Info(err.Error())
	}

	return dashboard
}

func (s *dashboardService) fetchInstagram(ctx context.Context, account *models.ConnectedAccount) (*models.InstagramMetrics, error) {
	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}
	return s.ig.FetchMetrics(ctx, accessToken)
}

func (s *dashboardService) fetchYoutube(ctx context.Context, account *models.ConnectedAccount) (*models.YoutubeMetrics, error) {
	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	refreshToken := ""
	if account.RefreshToken != "" {
		refreshToken, err = utils.Decrypt(account.RefreshToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return nil, err
		}
	}

	return s.yt.FetchMetrics(ctx, accessToken, refreshToken)
}

// archivePrevious snapshots the cache row that is about to be overwritten.
// Best effort only; archive problems never reach the caller.
func (s *dashboardService) archivePrevious(ctx context.Context, userID int64) {
	if s.ar == nil || !s.ar.Enabled() {
		return
	}

	prev, err := s.dc.GetLatestByUserID(ctx, userID)
	if err != nil || prev == nil {
		return
	}

	if err := s.ar.ArchiveSnapshot(ctx, userID, &prev.Data); err != nil {
		slog.Info(err.Error())
	}
}
