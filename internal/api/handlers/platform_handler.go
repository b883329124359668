package handlers

import (
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/creatorhub/configs"
	"github.com/maheshrc27/creatorhub/internal/models"
	"github.com/maheshrc27/creatorhub/internal/queue"
	"github.com/maheshrc27/creatorhub/internal/service"
	"github.com/maheshrc27/creatorhub/pkg/utils"
)

// stateTokenTTL bounds the provider round-trip; the signed state carries the
// user identity through the OAuth redirect instead of a popup handshake.
const stateTokenTTL = 10 * time.Minute

type PlatformHandler struct {
	ps          service.PlatformService
	ig          service.InstagramService
	yt          service.YoutubeService
	asynqClient *asynq.Client
	cfg         config.Config
}

func NewPlatformHandler(ps service.PlatformService, ig service.InstagramService, yt service.YoutubeService, asynqClient *asynq.Client, cfg config.Config) *PlatformHandler {
	return &PlatformHandler{
		ps:          ps,
		ig:          ig,
		yt:          yt,
		asynqClient: asynqClient,
		cfg:         cfg,
	}
}

func (h *PlatformHandler) AddSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Params("platform")

	state, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", userID), stateTokenTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create state token",
		})
	}

	authURL, err := h.ps.GetAuthURL(c.Context(), platform, state)
	if err != nil {
		if err == service.ErrPlatformNotConfigured {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("%s credentials not configured", platform),
				"notes": "Set the platform client ID in the environment",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"authUrl": authURL})
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	platform := c.Params("platform")

	// A provider-side denial arrives as an error query parameter; no token
	// exchange is attempted in that case.
	if oauthErr := c.Query("error"); oauthErr != "" {
		slog.Info(fmt.Sprintf("%s OAuth error: %s", platform, oauthErr))
		return h.redirectWithError(c, oauthErr)
	}

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return h.redirectWithError(c, "Unable to validate user")
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil || userID == 0 {
		slog.Info("invalid user id in state token")
		return h.redirectWithError(c, "Unable to validate user")
	}

	switch platform {
	case models.PlatformInstagram:
		err = h.ig.InstagramCallback(c.Context(), code, userID)
	case models.PlatformYoutube:
		err = h.yt.YoutubeCallback(c.Context(), code, userID)
	default:
		return h.redirectWithError(c, "unknown platform")
	}

	if err != nil {
		return h.redirectWithError(c, "something went wrong")
	}

	// Warm the dashboard cache so the first view after connecting is fresh.
	if h.asynqClient != nil {
		if err := queue.EnqueueDashboardSync(h.asynqClient, queue.DashboardSyncPayload{UserID: userID}); err != nil {
			log.Printf("Failed to enqueue dashboard sync for user %d: %v", userID, err)
		}
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts?connected=%s", h.cfg.FrontendURL, platform)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) redirectWithError(c *fiber.Ctx, message string) error {
	redirectURL := fmt.Sprintf("%s/dashboard/accounts?error=%s", h.cfg.FrontendURL, url.QueryEscape(message))
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListSocialAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accountList, err := h.ps.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch connected accounts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(accountList)
}

func (h *PlatformHandler) DeleteSocialAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountId := c.QueryInt("id", 0)

	err := h.ps.Disconnect(c.Context(), userID, int64(accountId))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect account",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
