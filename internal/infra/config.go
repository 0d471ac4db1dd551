package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultImageModel = "imagen-4.0-generate-001"
	DefaultVideoModel = "veo-3.1-fast-generate-preview"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	DatabaseURL       string
	StateDir          string
	StoragePath       string
	S3Bucket          string
	S3Prefix          string
	S3Region          string
	S3UsePathStyle    bool
	GeminiAPIKey      string
	GeminiBaseURL     string
	ImageModel        string
	VideoModel        string
	VideoPollInterval time.Duration
	CORSOrigins       []string
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StateDir:          getEnv("STATE_DIR", "./data/state"),
		StoragePath:       getEnv("STORAGE_PATH", "./data/media"),
		S3Bucket:          strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Prefix:          strings.Trim(os.Getenv("S3_PREFIX"), "/ "),
		S3Region:          os.Getenv("S3_REGION"),
		S3UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiBaseURL:     os.Getenv("GEMINI_BASE_URL"),
		ImageModel:        getEnv("IMAGE_MODEL", DefaultImageModel),
		VideoModel:        getEnv("VIDEO_MODEL", DefaultVideoModel),
		VideoPollInterval: time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 10)),
		CORSOrigins:       splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.VideoPollInterval <= 0 {
		cfg.VideoPollInterval = 10 * time.Second
	}

	if cfg.S3Bucket == "" && cfg.S3Prefix != "" {
		return nil, fmt.Errorf("S3_PREFIX requires S3_BUCKET")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
