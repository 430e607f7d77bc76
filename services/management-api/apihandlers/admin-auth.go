package apihandlers

import (
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	mw "github.com/Perpelix/discord-verification-bot/pkg/apihelpers/middlewares"
	jwthandling "github.com/Perpelix/discord-verification-bot/pkg/jwt-handling"
	"github.com/Perpelix/discord-verification-bot/pkg/pwhash"
)

func (h *HttpEndpoints) AddAdminAuthAPI(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", mw.RequirePayload(), h.adminLogin)
	}
}

type AdminLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// randomWait adds jitter to failed login responses to blunt timing probes and
// brute forcing.
func randomWait(minS int, maxS int) {
	offset, err := rand.Int(rand.Reader, big.NewInt(int64(maxS-minS)))
	if err != nil {
		offset = big.NewInt(0)
	}
	time.Sleep(time.Duration(int64(minS)+offset.Int64()) * time.Second)
}

func (h *HttpEndpoints) adminLogin(c *gin.Context) {
	var req AdminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Username == "" || req.Password == "" {
		slog.Error("missing required fields")
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	admin, err := h.verificationDBConn.GetAdminByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			slog.Warn("login attempt with unknown admin username", slog.String("username", req.Username))
			randomWait(2, 5)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		slog.Error("failed to look up admin", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	match, err := pwhash.ComparePasswordWithHash(admin.Password, req.Password)
	if err != nil || !match {
		slog.Warn("login attempt with wrong password", slog.String("username", req.Username))
		randomWait(2, 5)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := jwthandling.GenerateNewAdminUserToken(
		h.tokenExpiresIn,
		admin.ID.Hex(),
		admin.Username,
		admin.Role,
		h.tokenSignKey,
	)
	if err != nil {
		slog.Error("failed to generate token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"username": admin.Username,
			"role":     admin.Role,
		},
	})
}
