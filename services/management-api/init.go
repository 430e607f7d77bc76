package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/Perpelix/discord-verification-bot/pkg/apihelpers"
	"github.com/Perpelix/discord-verification-bot/pkg/db"
	"github.com/Perpelix/discord-verification-bot/pkg/utils"

	verificationDB "github.com/Perpelix/discord-verification-bot/pkg/db/verification"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_VERIFICATION_DB_USERNAME = "VERIFICATION_DB_USERNAME"
	ENV_VERIFICATION_DB_PASSWORD = "VERIFICATION_DB_PASSWORD"

	ENV_ADMIN_USER_JWT_SIGN_KEY = "ADMIN_USER_JWT_SIGN_KEY"
)

const DEFAULT_TOKEN_EXPIRES_IN = 7 * 24 * time.Hour

type ManagementApiConfig struct {
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

	AdminUserJWTConfig struct {
		SignKey   string `json:"sign_key" yaml:"sign_key"`
		ExpiresIn string `json:"expires_in" yaml:"expires_in"`
	} `json:"admin_user_jwt_config" yaml:"admin_user_jwt_config"`

	// DB configs
	DBConfigs struct {
		VerificationDB db.DBConfigYaml `json:"verification_db" yaml:"verification_db"`
	} `json:"db_configs" yaml:"db_configs"`
}

var (
	verificationDBService *verificationDB.VerificationDBService
	tokenExpiresIn        time.Duration
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

	if conf.AdminUserJWTConfig.SignKey == "" {
		slog.Error("Admin JWT sign key not set - configure it in the config file or through " + ENV_ADMIN_USER_JWT_SIGN_KEY)
		panic("admin JWT sign key not set")
	}

	tokenExpiresIn = DEFAULT_TOKEN_EXPIRES_IN
	if conf.AdminUserJWTConfig.ExpiresIn != "" {
		tokenExpiresIn, err = utils.ParseDurationString(conf.AdminUserJWTConfig.ExpiresIn)
		if err != nil {
			slog.Error("could not parse token expiration", slog.String("error", err.Error()))
			panic(err)
		}
	}

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

	if signKey := os.Getenv(ENV_ADMIN_USER_JWT_SIGN_KEY); signKey != "" {
		conf.AdminUserJWTConfig.SignKey = signKey
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
