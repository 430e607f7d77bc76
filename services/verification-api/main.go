package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Perpelix/discord-verification-bot/pkg/apihelpers"
	mw "github.com/Perpelix/discord-verification-bot/pkg/apihelpers/middlewares"
	"github.com/Perpelix/discord-verification-bot/pkg/ipreputation"
	"github.com/Perpelix/discord-verification-bot/pkg/verification"
	"github.com/Perpelix/discord-verification-bot/services/verification-api/apihandlers"
)

var conf VerificationApiConfig

func main() {
	riskSources := ipreputation.NewSourcesFromConfig(conf.VerificationConfig.RiskSources)
	riskScorer := ipreputation.NewScorer(conf.VerificationConfig.RiskScorer, riskSources...)
	slog.Info("Configured IP reputation sources", slog.Int("count", len(riskSources)))

	admissionEngine := verification.NewEngine(
		verificationDBService,
		riskScorer,
		conf.VerificationConfig.Admission,
	)

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", "Api-Key"},
		ExposeHeaders:    []string{"Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	rps := conf.VerificationConfig.RateLimit.RequestsPerSecond
	burst := conf.VerificationConfig.RateLimit.Burst
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 3
	}
	rateLimiter := mw.NewRateLimiter(rate.Limit(rps), burst)

	v1APIHandlers := apihandlers.NewHTTPHandler(
		verificationDBService,
		admissionEngine,
		conf.BotAPIKeys,
		!conf.VerificationConfig.IgnoreForwardedHeader,
	)
	v1APIHandlers.AddVerificationAPI(v1Root, rateLimiter)
	v1APIHandlers.AddBotWebhookAPI(v1Root)

	if conf.GinConfig.DebugMode {
		apihelpers.WriteRoutesToFile(router, "verification-api-routes.txt")
	}

	// Start the server
	slog.Info("Starting Verification API on port " + conf.GinConfig.Port)
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Verification API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Verification API", slog.String("error", err.Error()))
			return
		}
	}
}
