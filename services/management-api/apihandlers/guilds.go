package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/Perpelix/discord-verification-bot/pkg/apihelpers/middlewares"
	"github.com/Perpelix/discord-verification-bot/pkg/utils"
	"github.com/Perpelix/discord-verification-bot/pkg/verification/types"
)

func (h *HttpEndpoints) AddGuildManagementAPI(rg *gin.RouterGroup) {
	guildsGroup := rg.Group("/guilds")
	guildsGroup.Use(mw.GetAndValidateAdminUserJWT(h.tokenSignKey))
	{
		guildsGroup.GET("", h.listGuilds)
		guildsGroup.GET("/:guildId", h.getGuild)
		guildsGroup.PUT("/:guildId", mw.RequirePayload(), h.updateGuild)
	}
}

type GuildStats struct {
	TotalVerifications  int64 `json:"totalVerifications"`
	AltAccountsDetected int64 `json:"altAccountsDetected"`
	TotalWarns          int   `json:"totalWarns"`
}

func (h *HttpEndpoints) guildStats(c *gin.Context, guild types.Guild) (GuildStats, error) {
	ctx := c.Request.Context()

	verifications, err := h.verificationDBConn.CountVerifications(ctx, guild.GuildID)
	if err != nil {
		return GuildStats{}, err
	}
	altAccounts, err := h.verificationDBConn.CountAltAccountFlags(ctx, guild.GuildID)
	if err != nil {
		return GuildStats{}, err
	}

	return GuildStats{
		TotalVerifications:  verifications,
		AltAccountsDetected: altAccounts,
		TotalWarns:          guild.TotalWarns(),
	}, nil
}

func (h *HttpEndpoints) listGuilds(c *gin.Context) {
	guilds, err := h.verificationDBConn.ListGuilds(c.Request.Context())
	if err != nil {
		slog.Error("failed to list guilds", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	guildInfos := make([]gin.H, 0, len(guilds))
	for _, guild := range guilds {
		stats, err := h.guildStats(c, guild)
		if err != nil {
			slog.Error("failed to compute guild stats", slog.String("error", err.Error()), slog.String("guildID", guild.GuildID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		guildInfos = append(guildInfos, gin.H{
			"guildId":             guild.GuildID,
			"verificationEnabled": guild.Verification.Enabled,
			"totalVerifications":  stats.TotalVerifications,
			"altAccountsDetected": stats.AltAccountsDetected,
			"totalWarns":          stats.TotalWarns,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"guilds":  guildInfos,
		"total":   len(guildInfos),
	})
}

func (h *HttpEndpoints) getGuild(c *gin.Context) {
	guildID := c.Param("guildId")
	if !utils.IsURLSafe(guildID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
		return
	}

	guild, err := h.verificationDBConn.GetGuild(c.Request.Context(), guildID)
	if err != nil {
		slog.Error("failed to fetch guild", slog.String("error", err.Error()), slog.String("guildID", guildID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if guild == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "guild not found"})
		return
	}

	stats, err := h.guildStats(c, *guild)
	if err != nil {
		slog.Error("failed to compute guild stats", slog.String("error", err.Error()), slog.String("guildID", guildID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"guild":   guild,
		"stats":   stats,
	})
}

type UpdateGuildReq struct {
	Verification types.GuildVerificationSettings `json:"verification"`
	Settings     types.GuildSettings             `json:"settings"`
}

func (h *HttpEndpoints) updateGuild(c *gin.Context) {
	guildID := c.Param("guildId")
	if !utils.IsURLSafe(guildID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
		return
	}

	var req UpdateGuildReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.verificationDBConn.UpdateGuildSettings(c.Request.Context(), guildID, req.Verification, req.Settings)
	if err != nil {
		slog.Error("failed to update guild", slog.String("error", err.Error()), slog.String("guildID", guildID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "guild updated successfully",
	})
}
