package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/Perpelix/discord-verification-bot/pkg/apihelpers/middlewares"
)

// webhook actions used by the Discord bot
const (
	BOT_ACTION_VERIFY_USER   = "verify_user"
	BOT_ACTION_CHECK_ALT     = "check_alt"
	BOT_ACTION_GET_USER_DATA = "get_user_data"
	BOT_ACTION_MANUAL_VERIFY = "manual_verify"
)

func (h *HttpEndpoints) AddBotWebhookAPI(rg *gin.RouterGroup) {
	botGroup := rg.Group("/bot")
	botGroup.Use(mw.HasValidAPIKey(h.botAPIKeys))
	{
		botGroup.POST("/webhook", mw.RequirePayload(), h.botWebhook)
	}
}

type BotWebhookReq struct {
	Action string `json:"action"`
	Data   struct {
		UserID        string `json:"userId"`
		GuildID       string `json:"guildId"`
		IP            string `json:"ip"`
		Username      string `json:"username"`
		Discriminator string `json:"discriminator"`
	} `json:"data"`
}

func (h *HttpEndpoints) botWebhook(c *gin.Context) {
	var req BotWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case BOT_ACTION_VERIFY_USER:
		h.botCheckUserVerified(c, req)
	case BOT_ACTION_CHECK_ALT:
		h.botCheckAlt(c, req)
	case BOT_ACTION_GET_USER_DATA:
		h.botGetUserData(c, req)
	case BOT_ACTION_MANUAL_VERIFY:
		h.botManualVerify(c, req)
	default:
		slog.Warn("bot webhook called with invalid action", slog.String("action", req.Action))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
	}
}

func (h *HttpEndpoints) botCheckUserVerified(c *gin.Context, req BotWebhookReq) {
	if req.Data.UserID == "" || req.Data.GuildID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	verification, err := h.verificationDBConn.FindVerificationByUserAndGuild(c.Request.Context(), req.Data.UserID, req.Data.GuildID)
	if err != nil {
		slog.Error("failed to look up verification", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if verification == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "verified": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "verified": true, "data": verification})
}

func (h *HttpEndpoints) botCheckAlt(c *gin.Context, req BotWebhookReq) {
	if req.Data.IP == "" || req.Data.GuildID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	existing, err := h.verificationDBConn.FindVerificationByGuildAndIP(c.Request.Context(), req.Data.GuildID, req.Data.IP)
	if err != nil {
		slog.Error("failed to look up verification by IP", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if existing == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "isAlt": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "isAlt": true, "mainAccount": existing.UserID})
}

// botManualVerify records a verification performed by a moderator through the
// bot; it bypasses the fingerprint and risk checks.
func (h *HttpEndpoints) botManualVerify(c *gin.Context, req BotWebhookReq) {
	if req.Data.UserID == "" || req.Data.GuildID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	err := h.verificationDBConn.CreateManualVerification(c.Request.Context(), req.Data.UserID, req.Data.GuildID, req.Data.Username, req.Data.Discriminator)
	if err != nil {
		slog.Error("failed to save manual verification", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *HttpEndpoints) botGetUserData(c *gin.Context, req BotWebhookReq) {
	if req.Data.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	profile, err := h.verificationDBConn.GetUserProfile(c.Request.Context(), req.Data.UserID)
	if err != nil {
		slog.Error("failed to fetch user profile", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}
