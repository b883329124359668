package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAIService struct {
	content     string
	err         error
	contentType string
	input       string
}

func (f *fakeAIService) Enabled() bool { return true }

func (f *fakeAIService) GenerateIdeas(ctx context.Context, dashboard *models.DashboardSnapshot) ([]models.ContentIdea, error) {
	return nil, nil
}

func (f *fakeAIService) GenerateContent(ctx context.Context, contentType, input string) (string, error) {
	f.contentType = contentType
	f.input = input
	return f.content, f.err
}

func contentApp(svc *fakeAIService) *fiber.App {
	app := fiber.New()
	h := NewContentHandler(svc)
	app.Post("/api/content/generate", h.GenerateContent)
	return app
}

func postJSON(app *fiber.App, body string) (*http.Response, error) {
	req := httptest.NewRequest("POST", "/api/content/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return app.Test(req)
}

func TestGenerateContentHandlerSuccess(t *testing.T) {
	svc := &fakeAIService{content: "5 ideas for you"}
	app := contentApp(svc)

	resp, err := postJSON(app, `{"type":"idea","input":"fitness niche"}`)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "idea", svc.contentType)
	assert.Equal(t, "fitness niche", svc.input)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "5 ideas for you", body["content"])
}

func TestGenerateContentHandlerRateLimited(t *testing.T) {
	svc := &fakeAIService{err: service.ErrRateLimited}
	app := contentApp(svc)

	resp, err := postJSON(app, `{"type":"caption","input":"x"}`)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestGenerateContentHandlerPaymentRequired(t *testing.T) {
	svc := &fakeAIService{err: service.ErrPaymentRequired}
	app := contentApp(svc)

	resp, err := postJSON(app, `{"type":"caption","input":"x"}`)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestGenerateContentHandlerGatewayFailure(t *testing.T) {
	svc := &fakeAIService{err: assert.AnError}
	app := contentApp(svc)

	resp, err := postJSON(app, `{"type":"thumbnail","input":"x"}`)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGenerateContentHandlerBadBody(t *testing.T) {
	svc := &fakeAIService{}
	app := contentApp(svc)

	resp, err := postJSON(app, `{"type":`)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
