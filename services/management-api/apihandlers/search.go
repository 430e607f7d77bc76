package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	altdetection "github.com/Perpelix/discord-verification-bot/pkg/alt-detection"
	mw "github.com/Perpelix/discord-verification-bot/pkg/apihelpers/middlewares"
)

func (h *HttpEndpoints) AddAltSearchAPI(rg *gin.RouterGroup) {
	searchGroup := rg.Group("/search")
	searchGroup.Use(mw.GetAndValidateAdminUserJWT(h.tokenSignKey))
	{
		searchGroup.POST("", mw.RequirePayload(), h.searchAltAccounts)
	}
}

type AltSearchReq struct {
	Query string `json:"query"`
}

func (h *HttpEndpoints) searchAltAccounts(c *gin.Context) {
	var req AltSearchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.altEngine.Search(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, altdetection.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter required"})
			return
		}
		slog.Error("alt account search failed", slog.String("error", err.Error()), slog.String("query", req.Query))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"query":      req.Query,
		"results":    results,
		"totalFound": len(results),
	})
}
