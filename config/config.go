package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/jsphweid/saxchart/constants"
)

// Config holds the application configuration. Everything comes from the
// environment (optionally seeded from a .env file by main).
type Config struct {
	Environment string
	Port        string

	// Observability
	SentryDSN string

	// CORS
	AllowedOrigins []string

	// Conversion
	TransposeSemitones int
	DefaultQPM         float64
	MaxUploadBytes     int64
}

func Load() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		AllowedOrigins:     getList("CORS_ALLOWED_ORIGINS", constants.DefaultCORSOrigins),
		TransposeSemitones: getInt("TRANSPOSE_SEMITONES", constants.AltoSaxTransposeSemitones),
		DefaultQPM:         getFloat("DEFAULT_QPM", constants.DefaultQPM),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_BYTES", constants.DefaultMaxUploadBytes)),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getList splits a comma separated value, dropping blanks
func getList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var res []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	if len(res) == 0 {
		return defaultValue
	}
	return res
}
