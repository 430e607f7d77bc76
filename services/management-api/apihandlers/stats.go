package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Perpelix/discord-verification-bot/pkg/apihelpers"
	mw "github.com/Perpelix/discord-verification-bot/pkg/apihelpers/middlewares"
)

const RECENT_VERIFICATIONS_LIMIT = 10

func (h *HttpEndpoints) AddStatsAPI(rg *gin.RouterGroup) {
	statsGroup := rg.Group("/stats")
	statsGroup.Use(mw.GetAndValidateAdminUserJWT(h.tokenSignKey))
	{
		statsGroup.GET("", h.getStats)
	}

	verificationsGroup := rg.Group("/verifications")
	verificationsGroup.Use(mw.GetAndValidateAdminUserJWT(h.tokenSignKey))
	{
		verificationsGroup.GET("", h.getVerifications)
	}
}

func (h *HttpEndpoints) getStats(c *gin.Context) {
	ctx := c.Request.Context()

	totalGuilds, err := h.verificationDBConn.CountGuilds(ctx)
	if err != nil {
		slog.Error("failed to count guilds", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	totalVerifications, err := h.verificationDBConn.CountVerifications(ctx, "")
	if err != nil {
		slog.Error("failed to count verifications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	totalAltAccounts, err := h.verificationDBConn.CountAltAccountFlags(ctx, "")
	if err != nil {
		slog.Error("failed to count alt account flags", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	totalUsers, err := h.verificationDBConn.CountUserProfiles(ctx)
	if err != nil {
		slog.Error("failed to count users", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	recentVerifications, err := h.verificationDBConn.GetRecentVerifications(ctx, RECENT_VERIFICATIONS_LIMIT)
	if err != nil {
		slog.Error("failed to fetch recent verifications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"totalGuilds":         totalGuilds,
			"totalVerifications":  totalVerifications,
			"altAccountsDetected": totalAltAccounts,
			"totalUsers":          totalUsers,
		},
		"recentVerifications": recentVerifications,
	})
}

func (h *HttpEndpoints) getVerifications(c *gin.Context) {
	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		slog.Error("failed to parse query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verifications, paginationInfo, err := h.verificationDBConn.GetVerificationsPaginated(c.Request.Context(), query.Filter, query.Page, query.Limit)
	if err != nil {
		slog.Error("failed to fetch verifications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verifications": verifications,
		"pagination":    paginationInfo,
	})
}
