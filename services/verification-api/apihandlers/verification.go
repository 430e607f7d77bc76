package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/Perpelix/discord-verification-bot/pkg/apihelpers/middlewares"
	"github.com/Perpelix/discord-verification-bot/pkg/fingerprint"
	"github.com/Perpelix/discord-verification-bot/pkg/verification"
)

func (h *HttpEndpoints) AddVerificationAPI(rg *gin.RouterGroup, rateLimiter *mw.RateLimiter) {
	verifyGroup := rg.Group("/verify")
	{
		verifyGroup.POST("", mw.RequirePayload(), rateLimiter.Middleware(), h.verifyUser)
	}
}

type VerifyUserReq struct {
	UserID        string `json:"userId"`
	GuildID       string `json:"guildId"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

func (h *HttpEndpoints) verifyUser(c *gin.Context) {
	var req VerifyUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientInfo := fingerprint.ParseClientInfo(c.Request.Header, c.Request.RemoteAddr, h.trustForwardedHeader)

	result, err := h.admissionEngine.Admit(c.Request.Context(), verification.Request{
		UserID:        req.UserID,
		GuildID:       req.GuildID,
		Username:      req.Username,
		Discriminator: req.Discriminator,
		ClientInfo:    clientInfo,
	})
	if err != nil {
		if errors.Is(err, verification.ErrMissingUserID) ||
			errors.Is(err, verification.ErrMissingGuildID) ||
			errors.Is(err, verification.ErrMissingIP) {
			slog.Warn("verification request with missing fields", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
			return
		}
		slog.Error("failed to process verification", slog.String("error", err.Error()), slog.String("userID", req.UserID), slog.String("guildID", req.GuildID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	switch result.Status {
	case verification.STATUS_VPN_DETECTED:
		c.JSON(http.StatusForbidden, gin.H{
			"error":       "VPN or Proxy detected",
			"reason":      result.Status,
			"message":     "Please disable your VPN or proxy and try again.",
			"vpnDetected": true,
			"details":     result.Assessment,
		})
	case verification.STATUS_ALT_DETECTED:
		// The identity of the other account is intentionally not revealed.
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Alt account detected",
			"reason":  result.Status,
			"message": "This IP address is already associated with another account in this server.",
		})
	case verification.STATUS_ADMITTED:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"reason":  result.Status,
			"message": "Verification successful!",
		})
	default:
		slog.Error("unexpected admission status", slog.String("status", result.Status))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
