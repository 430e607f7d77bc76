package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	verificationDB "github.com/Perpelix/discord-verification-bot/pkg/db/verification"
	"github.com/Perpelix/discord-verification-bot/pkg/verification"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	verificationDBConn   *verificationDB.VerificationDBService
	admissionEngine      *verification.Engine
	botAPIKeys           []string
	trustForwardedHeader bool
}

func NewHTTPHandler(
	verificationDBConn *verificationDB.VerificationDBService,
	admissionEngine *verification.Engine,
	botAPIKeys []string,
	trustForwardedHeader bool,
) *HttpEndpoints {
	return &HttpEndpoints{
		verificationDBConn:   verificationDBConn,
		admissionEngine:      admissionEngine,
		botAPIKeys:           botAPIKeys,
		trustForwardedHeader: trustForwardedHeader,
	}
}
