package config

import (
	"strconv"
	"strings"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	SendTime             string `mapstructure:"SEND_TIME"`
	Timezone             string `mapstructure:"TIMEZONE"`
	PortalHorizonDays    int    `mapstructure:"PORTAL_HORIZON_DAYS"`
	OpenAIAPIKey         string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel          string `mapstructure:"OPENAI_MODEL"`
	TelegramBotToken     string `mapstructure:"TELEGRAM_BOT_TOKEN"`
}

var ConfigInstance Config

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
		"CORS_ALLOW_ORIGINS",
		"SCHEDULER_ENABLED", "SEND_TIME", "TIMEZONE", "PORTAL_HORIZON_DAYS",
		"OPENAI_API_KEY", "OPENAI_MODEL", "TELEGRAM_BOT_TOKEN",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetDefault("SEND_TIME", "08:00")
	viper.SetDefault("TIMEZONE", "Europe/Berlin")
	viper.SetDefault("PORTAL_HORIZON_DAYS", 90)
	viper.SetDefault("OPENAI_MODEL", "gpt-4")
	viper.SetDefault("SCHEDULER_ENABLED", true)

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"sendTime", config.SendTime,
		"timezone", config.Timezone,
		"schedulerEnabled", config.SchedulerEnabled,
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if _, _, err := ParseSendTime(config.SendTime); err != nil {
		return log.Err("Fatal error: invalid SEND_TIME", err, "sendTime", config.SendTime)
	}

	if _, err := time.LoadLocation(config.Timezone); err != nil {
		return log.Err("Fatal error: invalid TIMEZONE", err, "timezone", config.Timezone)
	}

	if config.PortalHorizonDays <= 0 {
		return log.Error(
			"Fatal error: invalid portal horizon",
			"days", config.PortalHorizonDays,
		)
	}

	ConfigInstance = config
	return nil
}

// ParseSendTime splits a HH:MM string into its hour and minute components.
func ParseSendTime(sendTime string) (int, int, error) {
	parts := strings.SplitN(sendTime, ":", 2)
	if len(parts) != 2 {
		return 0, 0, logger.New("config").Error("SEND_TIME must be HH:MM", "value", sendTime)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, logger.New("config").Error("SEND_TIME out of range", "value", sendTime)
	}

	return hour, minute, nil
}
