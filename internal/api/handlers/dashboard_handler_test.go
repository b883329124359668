package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboardService struct {
	getUserID  int64
	syncUserID int64
	getCalls   int
	syncCalls  int
}

func (f *fakeDashboardService) Get(ctx context.Context, userID int64) *models.DashboardSnapshot {
	f.getCalls++
	f.getUserID = userID
	if userID == 0 {
		return models.DefaultDashboard()
	}
	d := models.DefaultDashboard()
	d.Fallback = false
	d.Instagram.Connected = true
	return d
}

func (f *fakeDashboardService) Sync(ctx context.Context, userID int64) *models.DashboardSnapshot {
	f.syncCalls++
	f.syncUserID = userID
	return models.DefaultDashboard()
}

func dashboardApp(svc *fakeDashboardService, userID string) *fiber.App {
	app := fiber.New()
	if userID != "" {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_id", userID)
			return c.Next()
		})
	}

	h := NewDashboardHandler(svc)
	app.Get("/api/dashboard", h.GetDashboard)
	app.Post("/api/dashboard/sync", h.SyncDashboard)
	return app
}

func TestGetDashboardAnonymous(t *testing.T) {
	svc := &fakeDashboardService{}
	app := dashboardApp(svc, "")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), svc.getUserID)

	var body models.DashboardSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Fallback)
	assert.Equal(t, 145, body.Instagram.Posts)
}

func TestGetDashboardAuthenticated(t *testing.T) {
	svc := &fakeDashboardService{}
	app := dashboardApp(svc, "7")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), svc.getUserID)

	var body models.DashboardSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Fallback)
	assert.True(t, body.Instagram.Connected)
}

func TestSyncDashboardWrapsPayload(t *testing.T) {
	svc := &fakeDashboardService{}
	app := dashboardApp(svc, "7")

	resp, err := app.Test(httptest.NewRequest("POST", "/api/dashboard/sync", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(7), svc.syncUserID)
	assert.Equal(t, 1, svc.syncCalls)

	var body struct {
		Data models.DashboardSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(8500), body.Data.Youtube.Subscribers)
}
