package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/transfer"
)

var (
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrPaymentRequired = errors.New("payment required - add credits to workspace")
)

const ideasSystemPrompt = "You are a social media content strategist. Generate creative, actionable content ideas with scripts, captions, and visual prompts. Respond with a JSON array only: each element has the keys title, script, caption, thumbnail_prompt and hashtags (array of strings). No prose outside the JSON."

var contentSystemPrompts = map[string]string{
	"idea":      "You are a creative content strategist. Generate 5 unique, engaging content ideas based on the user's niche. Format each idea as a bullet point with an emoji. Make them specific, actionable, and trendy.",
	"caption":   "You are a social media expert. Create an engaging caption and video script based on the user's concept. Include: an attention-grabbing hook, 3 key points with bullet points, relevant hashtags, and a call-to-action. Use emojis strategically. Make it conversational and engaging.",
	"thumbnail": "You are a visual design expert specializing in clickable thumbnails. Create a detailed thumbnail prompt that includes: visual elements, color scheme, text placement, facial expressions, layout suggestions, and style notes. Make it specific and actionable for designers.",
}

type AIService interface {
	Enabled() bool
	GenerateIdeas(ctx context.Context, dashboard *models.DashboardSnapshot) ([]models.ContentIdea, error)
	GenerateContent(ctx context.Context, contentType, input string) (string, error)
}

type aiService struct {
	cfg config.Config
}

func NewAIService(cfg config.Config) AIService {
	return &aiService{cfg: cfg}
}

func (s *aiService) Enabled() bool {
	return s.cfg.AIGatewayKey != ""
}

// GenerateIdeas asks the gateway for three content ideas grounded in the
// assembled snapshot. The model is instructed to answer with a JSON array;
// when it responds with anything else the templated trio is used so the
// caller still gets well-formed ideas.
func (s *aiService) GenerateIdeas(ctx context.Context, dashboard *models.DashboardSnapshot) ([]models.ContentIdea, error) {
	prompt := fmt.Sprintf(`Based on this creator's data, generate 3 personalized content ideas:
- Instagram: %d posts, %.1f%% engagement
- YouTube: %d subscribers, %d videos
- Trending: %s

For each idea, provide: title, short script (2-3 sentences), caption with hashtags, and a DALL-E thumbnail prompt.`,
		dashboard.Instagram.Posts,
		dashboard.Instagram.EngagementRate,
		dashboard.Youtube.Subscribers,
		dashboard.Youtube.Videos,
		strings.Join(dashboard.Trending.Topics, ", "),
	)

	content, err := s.callGateway(ctx, ideasSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	ideas, err := ParseContentIdeas(content)
	if err != nil {
		slog.Info(err.Error())
		return templatedIdeas(), nil
	}
	return ideas, nil
}

func (s *aiService) GenerateContent(ctx context.Context, contentType, input string) (string, error) {
	systemPrompt, ok := contentSystemPrompts[contentType]
	if !ok {
		systemPrompt = contentSystemPrompts["idea"]
	}

	return s.callGateway(ctx, systemPrompt, input)
}

func (s *aiService) callGateway(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.cfg.AIGatewayKey == "" {
		return "", errors.New("AI gateway key is not configured")
	}

	reqBody := transfer.ChatCompletionRequest{
		Model: s.cfg.AIModel,
		Messages: []transfer.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.AIGatewayURL, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.AIGatewayKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", ErrRateLimited
		case http.StatusPaymentRequired:
			return "", ErrPaymentRequired
		default:
			return "", fmt.Errorf("AI gateway error: %d", resp.StatusCode)
		}
	}

	var result transfer.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to decode AI gateway response: %v", err)
	}

	if len(result.Choices) == 0 {
		return "", errors.New("AI gateway returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// ParseContentIdeas extracts a JSON array of ideas from the model's reply,
// tolerating markdown code fences around the payload.
func ParseContentIdeas(content string) ([]models.ContentIdea, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, errors.New("no JSON array in AI response")
	}

	var ideas []models.ContentIdea
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &ideas); err != nil {
		return nil, fmt.Errorf("failed to parse AI ideas: %v", err)
	}

	if len(ideas) == 0 {
		return nil, errors.New("AI response contained no ideas")
	}
	if len(ideas) > 3 {
		ideas = ideas[:3]
	}

	for i := range ideas {
		if ideas[i].Title == "" {
			return nil, errors.New("AI idea is missing a title")
		}
		if ideas[i].Hashtags == nil {
			ideas[i].Hashtags = []string{}
		}
	}

	return ideas, nil
}

func templatedIdeas() []models.ContentIdea {
	return []models.ContentIdea{
		{
			Title:           "Trending Topic Deep Dive",
			Script:          "Create engaging content around current trending topics in your niche.",
			Caption:         "Diving into what's hot right now! #trending #contentcreator #viral",
			ThumbnailPrompt: "Bold text overlay \"TRENDING NOW\" on vibrant gradient background, modern minimalist style, high contrast",
			Hashtags:        []string{"#trending", "#contentcreator", "#socialmedia"},
		},
		{
			Title:           "Behind The Scenes",
			Script:          "Show your audience the real process behind your content creation.",
			Caption:         "Here's what really goes into creating content #bts #creator #authentic",
			ThumbnailPrompt: "Split screen showing creator working, warm lighting, professional setup visible, authentic vibe",
			Hashtags:        []string{"#bts", "#creator", "#contentcreation"},
		},
		{
			Title:           "Quick Tips Series",
			Script:          "Share bite-sized value that your audience can immediately implement.",
			Caption:         "Quick tip that changed everything for me #tips #growth #value",
			ThumbnailPrompt: "Clean infographic style, light bulb icon, bold number \"1\" or \"TIP\", bright colors, easy to read text",
			Hashtags:        []string{"#tips", "#growth", "#contentmarketing"},
		},
	}
}
