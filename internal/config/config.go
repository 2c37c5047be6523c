package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Inputs
	DatasetPath string // env: DATASET_PATH, default: "data/raw_data.csv"
	ModelPath   string // env: MODEL_PATH, default: "models/model.json"
	ConfigFile  string // env: CONFIG_FILE, default: "config.yaml"
	ViewsDir    string // env: VIEWS_DIR, default: "./views"
	StaticDir   string // env: STATIC_DIR, default: "./static"

	// Session
	SessionSecret string // Used for encrypting cookies (base64, 32 bytes)

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Rate limiting
	RedisURL     string // env: REDIS_URL, limiter storage; in-memory when empty
	RateLimitMax int    // env: RATE_LIMIT_MAX, requests per minute per IP

	// Logging
	LogLevel  string // env: LOG_LEVEL, default: "info"
	LogFormat string // env: LOG_FORMAT, "json" or "console"

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Engagement Dashboard"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	cfg := &Config{
		Env:           getEnv("ENV", "development"),
		ServerAddr:    getEnv("SERVER_ADDR", ":3000"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		DatasetPath:   getEnv("DATASET_PATH", "data/raw_data.csv"),
		ModelPath:     getEnv("MODEL_PATH", "models/model.json"),
		ConfigFile:    getEnv("CONFIG_FILE", "config.yaml"),
		ViewsDir:      getEnv("VIEWS_DIR", "./views"),
		StaticDir:     getEnv("STATIC_DIR", "./static"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		RateLimitMax:  getEnvInt("RATE_LIMIT_MAX", 120),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", ""),

		SiteTitle:   getEnv("SITE_TITLE", "Engagement Dashboard"),
		SiteTagline: getEnv("SITE_TAGLINE", "How your posts perform, and how the next one might"),
		SiteFooter:  getEnv("SITE_FOOTER", "Engagement Dashboard"),
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDev() {
			cfg.LogFormat = "console"
		}
	}
	return cfg
}

// LoadDotEnv loads variables from .env files into the environment without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
