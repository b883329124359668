package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/service"
	"github.com/maheshrc27/creatorhub/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	platformSecret   = "0123456789abcdef0123456789abcdef"
	platformFrontend = "http://localhost:5173"
)

type fakePlatformService struct {
	authURL string
	authErr error
	state   string
}

func (f *fakePlatformService) GetAuthURL(ctx context.Context, platform, tokenString string) (string, error) {
	f.state = tokenString
	return f.authURL, f.authErr
}

func (f *fakePlatformService) List(ctx context.Context, userID int64) ([]*models.ConnectedAccount, error) {
	return []*models.ConnectedAccount{}, nil
}

func (f *fakePlatformService) Disconnect(ctx context.Context, userID, accountID int64) error {
	return nil
}

type fakeIGService struct {
	callbackErr    error
	callbackUserID int64
	callbackCode   string
	calls          int
}

func (f *fakeIGService) InstagramCallback(ctx context.Context, code string, userID int64) error {
	f.calls++
	f.callbackCode = code
	f.callbackUserID = userID
	return f.callbackErr
}

func (f *fakeIGService) RefreshInstagramToken(ctx context.Context, userID int64, refreshToken string) error {
	return nil
}

func (f *fakeIGService) FetchMetrics(ctx context.Context, accessToken string) (*models.InstagramMetrics, error) {
	return nil, nil
}

type fakeYTService struct {
	callbackErr error
	calls       int
}

func (f *fakeYTService) YoutubeCallback(ctx context.Context, code string, userID int64) error {
	f.calls++
	return f.callbackErr
}

func (f *fakeYTService) RefreshYoutubeToken(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	return nil
}

func (f *fakeYTService) FetchMetrics(ctx context.Context, accessToken, refreshToken string) (*models.YoutubeMetrics, error) {
	return nil, nil
}

type platformFixture struct {
	ps  *fakePlatformService
	ig  *fakeIGService
	yt  *fakeYTService
	app *fiber.App
}

func newPlatformFixture(userID string) *platformFixture {
	cfg := config.Config{SecretKey: platformSecret, FrontendURL: platformFrontend}

	f := &platformFixture{
		ps: &fakePlatformService{authURL: "https://provider/auth"},
		ig: &fakeIGService{},
		yt: &fakeYTService{},
	}

	h := NewPlatformHandler(f.ps, f.ig, f.yt, nil, cfg)

	app := fiber.New()
	if userID != "" {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_id", userID)
			return c.Next()
		})
	}
	app.Get("/auth/:platform", h.AddSocialAccount)
	app.Get("/auth/:platform/callback", h.CallbackHandler)

	f.app = app
	return f
}

func TestAddSocialAccountReturnsAuthURL(t *testing.T) {
	f := newPlatformFixture("7")

	resp, err := f.app.Test(httptest.NewRequest("GET", "/auth/instagram", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "https://provider/auth", body["authUrl"])

	// the state parameter is a signed token carrying the user identity
	claims, err := utils.ValidateToken(platformSecret, f.ps.state)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
}

func TestAddSocialAccountUnconfiguredPlatform(t *testing.T) {
	f := newPlatformFixture("7")
	f.ps.authErr = service.ErrPlatformNotConfigured

	resp, err := f.app.Test(httptest.NewRequest("GET", "/auth/instagram", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "not configured")
}

func TestCallbackProviderDenialSkipsExchange(t *testing.T) {
	f := newPlatformFixture("")

	resp, err := f.app.Test(httptest.NewRequest("GET", "/auth/instagram/callback?error=access_denied", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.True(t, strings.HasPrefix(location, platformFrontend+"/dashboard/accounts?error="))
	assert.Contains(t, location, "access_denied")
	assert.Zero(t, f.ig.calls)
}

func TestCallbackRejectsBadState(t *testing.T) {
	f := newPlatformFixture("")

	resp, err := f.app.Test(httptest.NewRequest("GET", "/auth/instagram/callback?code=abc&state=forged", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "error=")
	assert.Zero(t, f.ig.calls)
}

func TestCallbackInstagramSuccess(t *testing.T) {
	f := newPlatformFixture("")

	state, err := utils.GenerateToken(platformSecret, "7", time.Minute)
	require.NoError(t, err)

	target := "/auth/instagram/callback?code=abc&state=" + url.QueryEscape(state)
	resp, err := f.app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, platformFrontend+"/dashboard/accounts?connected=instagram", resp.Header.Get("Location"))
	assert.Equal(t, 1, f.ig.calls)
	assert.Equal(t, "abc", f.ig.callbackCode)
	assert.Equal(t, int64(7), f.ig.callbackUserID)
	assert.Zero(t, f.yt.calls)
}

func TestCallbackYoutubeSuccess(t *testing.T) {
	f := newPlatformFixture("")

	state, err := utils.GenerateToken(platformSecret, "7", time.Minute)
	require.NoError(t, err)

	target := "/auth/youtube/callback?code=abc&state=" + url.QueryEscape(state)
	resp, err := f.app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, platformFrontend+"/dashboard/accounts?connected=youtube", resp.Header.Get("Location"))
	assert.Equal(t, 1, f.yt.calls)
}

func TestCallbackUnknownPlatform(t *testing.T) {
	f := newPlatformFixture("")

	state, err := utils.GenerateToken(platformSecret, "7", time.Minute)
	require.NoError(t, err)

	target := "/auth/tiktok/callback?code=abc&state=" + url.QueryEscape(state)
	resp, err := f.app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "error=")
}

func TestCallbackExchangeFailure(t *testing.T) {
	f := newPlatformFixture("")
	f.ig.callbackErr = assert.AnError

	state, err := utils.GenerateToken(platformSecret, "7", time.Minute)
	require.NoError(t, err)

	target := "/auth/instagram/callback?code=abc&state=" + url.QueryEscape(state)
	resp, err := f.app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "error=")
}
