package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/Perpelix/discord-verification-bot/pkg/apihelpers"
	"github.com/Perpelix/discord-verification-bot/pkg/db"
	"github.com/Perpelix/discord-verification-bot/pkg/ipreputation"
	"github.com/Perpelix/discord-verification-bot/pkg/utils"
	"github.com/Perpelix/discord-verification-bot/pkg/verification"

	verificationDB "github.com/Perpelix/discord-verification-bot/pkg/db/verification"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_VERIFICATION_DB_USERNAME = "VERIFICATION_DB_USERNAME"
	ENV_VERIFICATION_DB_PASSWORD = "VERIFICATION_DB_PASSWORD"

	ENV_BOT_API_KEY        = "BOT_API_KEY"
	ENV_IPHUB_API_KEY      = "IPHUB_API_KEY"
	ENV_PROXYCHECK_API_KEY = "PROXYCHECK_API_KEY"
)

type VerificationApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// DB configs
	DBConfigs struct {
		VerificationDB db.DBConfigYaml `json:"verification_db" yaml:"verification_db"`
	} `json:"db_configs" yaml:"db_configs"`

	VerificationConfig struct {
		// By default the first X-Forwarded-For entry is accepted as the client
		// IP, which is only safe behind a reverse proxy that overwrites the
		// header. Set this when the API is exposed directly.
		IgnoreForwardedHeader bool `json:"ignore_forwarded_header" yaml:"ignore_forwarded_header"`

		Admission verification.EngineConfig `json:"admission" yaml:"admission"`

		RiskScorer  ipreputation.ScorerConfig  `json:"risk_scorer" yaml:"risk_scorer"`
		RiskSources ipreputation.SourcesConfig `json:"risk_sources" yaml:"risk_sources"`

		RateLimit struct {
			RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
			Burst             int     `json:"burst" yaml:"burst"`
		} `json:"rate_limit" yaml:"rate_limit"`
	} `json:"verification_config" yaml:"verification_config"`

	// API keys the Discord bot may use on the webhook
	BotAPIKeys []string `json:"bot_api_keys" yaml:"bot_api_keys"`
}

var (
	verificationDBService *verificationDB.VerificationDBService
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
		conf.Logging.IncludeBuildInfo,
	)

	// Override secrets from environment variables
	secretsOverride()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_VERIFICATION_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.VerificationDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_VERIFICATION_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.VerificationDB.Password = dbPassword
	}

	if botAPIKey := os.Getenv(ENV_BOT_API_KEY); botAPIKey != "" {
		conf.BotAPIKeys = append(conf.BotAPIKeys, botAPIKey)
	}

	if ipHubAPIKey := os.Getenv(ENV_IPHUB_API_KEY); ipHubAPIKey != "" {
		conf.VerificationConfig.RiskSources.IPHubAPIKey = ipHubAPIKey
	}

	if proxyCheckAPIKey := os.Getenv(ENV_PROXYCHECK_API_KEY); proxyCheckAPIKey != "" {
		conf.VerificationConfig.RiskSources.ProxyCheckAPIKey = proxyCheckAPIKey
	}
}

func initDBs() {
	var err error
	verificationDBService, err = verificationDB.NewVerificationDBService(db.DBConfigFromYamlObj(conf.DBConfigs.VerificationDB))
	if err != nil {
		slog.Error("Error connecting to Verification DB", slog.String("error", err.Error()))
		panic(err)
	}
}
