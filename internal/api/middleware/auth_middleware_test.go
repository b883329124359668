package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApiKeyService struct {
	userID int64
	err    error
}

func (f *fakeApiKeyService) Create(ctx context.Context, userID int64) error { return nil }

func (f *fakeApiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	return nil, nil
}

func (f *fakeApiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	return f.userID, f.err
}

func (f *fakeApiKeyService) RemoveAPIKey(ctx context.Context, userID, keyID int64) error {
	return nil
}

const (
	mwSecret = "middleware-secret"
	mwCookie = "session_token"
)

func middlewareApp(keys *fakeApiKeyService, optional bool) *fiber.App {
	cfg := config.Config{SecretKey: mwSecret, CookieName: mwCookie}
	m := NewAuthMiddleware(cfg, keys)

	app := fiber.New()
	if optional {
		app.Use(m.OptionalAuthMiddleware())
	} else {
		app.Use(m.AuthMiddleware())
	}
	app.Get("/probe", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		return c.JSON(fiber.Map{"user_id": userID})
	})
	return app
}

func TestAuthMiddlewareRejectsMissingCredentials(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{}, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsCookie(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{}, false)

	token, err := utils.GenerateToken(mwSecret, "42", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.AddCookie(&http.Cookie{Name: mwCookie, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsBearerHeader(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{}, false)

	token, err := utils.GenerateToken(mwSecret, "42", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{}, false)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.AddCookie(&http.Cookie{Name: mwCookie, Value: "garbage"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsApiKey(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{userID: 42}, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/probe?api_key=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejectsUnknownApiKey(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{err: errors.New("Key doesn't exist")}, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/probe?api_key=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalAuthMiddlewareAllowsAnonymous(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{}, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptionalAuthMiddlewareIgnoresBadToken(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{}, true)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.AddCookie(&http.Cookie{Name: mwCookie, Value: "garbage"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptionalAuthMiddlewareResolvesValidToken(t *testing.T) {
	app := middlewareApp(&fakeApiKeyService{}, true)

	token, err := utils.GenerateToken(mwSecret, "42", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.AddCookie(&http.Cookie{Name: mwCookie, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
