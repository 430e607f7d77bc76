package main

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

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
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		VerificationDB db.DBConfigYaml `json:"verification_db" yaml:"verification_db"`
	} `json:"db_configs" yaml:"db_configs"`
}

var conf config

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

	// Init DB
	verificationDBService, err = verificationDB.NewVerificationDBService(db.DBConfigFromYamlObj(conf.DBConfigs.VerificationDB))
	if err != nil {
		slog.Error("Error connecting to verification DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_VERIFICATION_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.VerificationDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_VERIFICATION_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.VerificationDB.Password = dbPassword
	}
}
