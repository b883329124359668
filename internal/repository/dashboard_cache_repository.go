package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/maheshrc27/creatorhub/internal/models"
)

type DashboardCacheRepository interface {
	GetLatestByUserID(ctx context.Context, userID int64) (*models.DashboardCache, error)
	Upsert(ctx context.Context, cache *models.DashboardCache) error
}

type dashboardCacheRepository struct {
	db *sql.DB
}

func NewDashboardCacheRepository(db *sql.DB) DashboardCacheRepository {
	return &dashboardCacheRepository{db: db}
}

func (r *dashboardCacheRepository) GetLatestByUserID(ctx context.Context, userID int64) (*models.DashboardCache, error) {
	query := `
		SELECT user_id, platform, data, last_synced, sync_status, error_message
		FROM dashboard_cache
		WHERE user_id = $1
		ORDER BY last_synced DESC
		LIMIT 1`

	var cache models.DashboardCache
	var data []byte
	var errorMessage sql.NullString

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cache.UserID, &cache.Platform, &data, &cache.LastSynced, &cache.SyncStatus, &errorMessage)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if err := json.Unmarshal(data, &cache.Data); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	cache.ErrorMessage = errorMessage.String

	return &cache, nil
}

// Upsert overwrites the single unified row per user; last writer wins.
func (r *dashboardCacheRepository) Upsert(ctx context.Context, cache *models.DashboardCache) error {
	data, err := json.Marshal(cache.Data)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		INSERT INTO dashboard_cache (user_id, platform, data, last_synced, sync_status, error_message)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		ON CONFLICT (user_id, platform)
		DO UPDATE SET
			data = EXCLUDED.data,
			last_synced = EXCLUDED.last_synced,
			sync_status = EXCLUDED.sync_status,
			error_message = EXCLUDED.error_message`

	_, err = r.db.ExecContext(ctx, query,
		cache.UserID, cache.Platform, data, cache.LastSynced, cache.SyncStatus, cache.ErrorMessage)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
