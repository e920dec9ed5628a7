package config

import (
	"log/slog"
	"os"

	"github.com/Jacobbrewer1/meiple/pkg/logging"
	"github.com/joho/godotenv"
)

func Parse(l *slog.Logger) {
	// Load a .env file if one is present. The environment always wins.
	if err := godotenv.Load(); err != nil {
		l.Debug("No .env file loaded", slog.String(logging.KeyError, err.Error()))
	}

	if envBT := os.Getenv(EnvBotToken); envBT != "" {
		l.Debug("Found bot token in environment", slog.String("key", EnvBotToken))
		BotToken = envBT
	}

	if envAppId := os.Getenv(EnvApplicationId); envAppId != "" {
		l.Debug("Found application ID in environment", slog.String("key", EnvApplicationId))
		ApplicationId = envAppId
	}

	if envOwner := os.Getenv(EnvOwnerId); envOwner != "" {
		l.Debug("Found owner ID in environment", slog.String("key", EnvOwnerId))
		OwnerId = envOwner
	}

	if envPrefix := os.Getenv(EnvCommandPrefix); envPrefix != "" {
		l.Debug("Found command prefix in environment", slog.String("key", EnvCommandPrefix))
		CommandPrefix = envPrefix
	} else {
		CommandPrefix = DefaultCommandPrefix
		l.Info("No command prefix provided in environment, defaulting",
			slog.String("key", EnvCommandPrefix),
			slog.String("prefix", CommandPrefix),
		)
	}

	if envSettings := os.Getenv(EnvSettingsFile); envSettings != "" {
		l.Debug("Found settings file in environment", slog.String("key", EnvSettingsFile))
		SettingsFile = envSettings
	} else {
		SettingsFile = DefaultSettingsFile
		l.Info("No settings file provided in environment, defaulting",
			slog.String("key", EnvSettingsFile),
			slog.String("path", SettingsFile),
		)
	}

	if envMonitoringPort := os.Getenv(EnvMonitoringPort); envMonitoringPort != "" {
		l.Debug("Found monitoring port in environment", slog.String("key", EnvMonitoringPort))
		MonitoringPort = envMonitoringPort
	} else {
		MonitoringPort = DefaultMonitoringPort
		l.Info("No monitoring port provided in environment, defaulting to 8080", slog.String("key", EnvMonitoringPort))
	}

	if BotToken != "" &&
		ApplicationId != "" &&
		OwnerId != "" {

		// All required environment variables have been provided.
		l.Debug("All required environment variables have been provided")
		return
	}

	l.Error("Not all required environment variables have been provided", slog.String(logging.KeyError, "Incomplete configuration"))
	os.Exit(1)
}
