package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayStub(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req transfer.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		resp := transfer.ChatCompletionResponse{}
		resp.Choices = []transfer.ChatCompletionChoice{
			{Message: transfer.ChatMessage{Role: "assistant", Content: content}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func gatewayService(url string) AIService {
	return NewAIService(config.Config{
		AIGatewayURL: url,
		AIGatewayKey: "test-key",
		AIModel:      "google/gemini-2.5-flash",
	})
}

func TestGenerateContentSuccess(t *testing.T) {
	srv := gatewayStub(t, http.StatusOK, "Here are 5 ideas...")
	defer srv.Close()

	out, err := gatewayService(srv.URL).GenerateContent(context.Background(), "idea", "fitness niche")
	require.NoError(t, err)
	assert.Equal(t, "Here are 5 ideas...", out)
}

func TestGenerateContentRateLimited(t *testing.T) {
	srv := gatewayStub(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	_, err := gatewayService(srv.URL).GenerateContent(context.Background(), "caption", "hello")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestGenerateContentPaymentRequired(t *testing.T) {
	srv := gatewayStub(t, http.StatusPaymentRequired, "")
	defer srv.Close()

	_, err := gatewayService(srv.URL).GenerateContent(context.Background(), "thumbnail", "hello")
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestGenerateContentUnknownTypeFallsBackToIdea(t *testing.T) {
	srv := gatewayStub(t, http.StatusOK, "ok")
	defer srv.Close()

	_, err := gatewayService(srv.URL).GenerateContent(context.Background(), "bogus", "hello")
	assert.NoError(t, err)
}

func TestAIServiceDisabledWithoutKey(t *testing.T) {
	s := NewAIService(config.Config{})
	assert.False(t, s.Enabled())

	_, err := s.GenerateContent(context.Background(), "idea", "hello")
	assert.Error(t, err)
}

func TestGenerateIdeasParsesJSON(t *testing.T) {
	reply := `[{"title":"A","script":"s","caption":"c","thumbnail_prompt":"t","hashtags":["#a"]},
		{"title":"B","script":"s","caption":"c","thumbnail_prompt":"t","hashtags":["#b"]},
		{"title":"C","script":"s","caption":"c","thumbnail_prompt":"t","hashtags":["#c"]}]`
	srv := gatewayStub(t, http.StatusOK, reply)
	defer srv.Close()

	ideas, err := gatewayService(srv.URL).GenerateIdeas(context.Background(), models.DefaultDashboard())
	require.NoError(t, err)
	require.Len(t, ideas, 3)
	assert.Equal(t, "A", ideas[0].Title)
	assert.Equal(t, []string{"#b"}, ideas[1].Hashtags)
}

func TestGenerateIdeasProseFallsBackToTemplate(t *testing.T) {
	srv := gatewayStub(t, http.StatusOK, "Sure! Here are some great ideas for you.")
	defer srv.Close()

	ideas, err := gatewayService(srv.URL).GenerateIdeas(context.Background(), models.DefaultDashboard())
	require.NoError(t, err)
	require.Len(t, ideas, 3)
	assert.Equal(t, "Trending Topic Deep Dive", ideas[0].Title)
}

func TestGenerateIdeasPropagatesGatewayError(t *testing.T) {
	srv := gatewayStub(t, http.StatusTooManyRequests, "")
	defer srv.Close()

	_, err := gatewayService(srv.URL).GenerateIdeas(context.Background(), models.DefaultDashboard())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestParseContentIdeasCodeFence(t *testing.T) {
	content := "```json\n[{\"title\":\"Fenced\",\"hashtags\":[]}]\n```"

	ideas, err := ParseContentIdeas(content)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Fenced", ideas[0].Title)
}

func TestParseContentIdeasSurroundingProse(t *testing.T) {
	content := `Here you go: [{"title":"One"},{"title":"Two"}] hope that helps!`

	ideas, err := ParseContentIdeas(content)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.NotNil(t, ideas[0].Hashtags)
}

func TestParseContentIdeasCapsAtThree(t *testing.T) {
	content := `[{"title":"1"},{"title":"2"},{"title":"3"},{"title":"4"}]`

	ideas, err := ParseContentIdeas(content)
	require.NoError(t, err)
	assert.Len(t, ideas, 3)
}

func TestParseContentIdeasRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"prose":         "no array here",
		"empty array":   "[]",
		"missing title": `[{"script":"s"}]`,
		"bad json":      `[{"title":}]`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseContentIdeas(content)
			assert.Error(t, err)
		})
	}
}
