package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	altdetection "github.com/Perpelix/discord-verification-bot/pkg/alt-detection"
	verificationDB "github.com/Perpelix/discord-verification-bot/pkg/db/verification"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	verificationDBConn *verificationDB.VerificationDBService
	altEngine          *altdetection.Engine
	tokenSignKey       string
	tokenExpiresIn     time.Duration
}

func NewHTTPHandler(
	tokenSignKey string,
	tokenExpiresIn time.Duration,
	verificationDBConn *verificationDB.VerificationDBService,
	altEngine *altdetection.Engine,
) *HttpEndpoints {
	return &HttpEndpoints{
		verificationDBConn: verificationDBConn,
		altEngine:          altEngine,
		tokenSignKey:       tokenSignKey,
		tokenExpiresIn:     tokenExpiresIn,
	}
}
