package pomomo

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	HTTPAddr          string
	LogLevel          string
	PresetsPath       string
	DiscordWebhookURL string
	Durations         Durations
}

// LoadConfig reads .env (prod) or .env.dev, then the POMOMO_* environment.
// Missing dotenv files are not an error.
func LoadConfig(isProd bool) (Config, error) {
	if isProd {
		_ = godotenv.Load(".env")
	} else {
		_ = godotenv.Load(".env.dev")
	}

	config := Config{
		DatabaseURL:       os.Getenv("POMOMO_DB_PATH"),
		HTTPAddr:          os.Getenv("POMOMO_HTTP_ADDR"),
		LogLevel:          os.Getenv("POMOMO_LOG_LEVEL"),
		PresetsPath:       os.Getenv("POMOMO_PRESETS_PATH"),
		DiscordWebhookURL: os.Getenv("POMOMO_DISCORD_WEBHOOK_URL"),
	}

	config.Durations = Durations{
		WorkMinutes:  minutesEnv("POMOMO_WORK_MINUTES", DefaultWorkMinutes),
		BreakMinutes: minutesEnv("POMOMO_BREAK_MINUTES", DefaultBreakMinutes),
	}

	if config.DatabaseURL == "" {
		config.DatabaseURL = "pomomo.db"
	}
	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return config, nil
}

// minutesEnv falls back to def, with a warning, when key holds anything but
// a whole number of minutes in 1..MaxMinutes.
func minutesEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || !ValidMinutes(n) {
		log.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}
