package config

import (
	"os"
	"strings"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Platform struct {
	APIBaseURL   string
	ClientID     string
	ClientSecret string
	TokenURL     string
	AccountID    string
}

type Config struct {
	PostgresURI     string
	RedisURI        string
	GeminiAPIKey    string
	GeminiTextModel string
	GeminiImgModel  string
	Platform        Platform
	R2              R2
	Timezone        string
	PostingTimes    []string
	Topics          []string
	SecretKey       string
	CookieName      string
	AdminAPIKey     string
	AdminPassword   string
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:     getEnv("POSTGRES_URI", ""),
		RedisURI:        getEnv("REDIS_URI", "127.0.0.1:6379"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiTextModel: getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),
		GeminiImgModel:  getEnv("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),
		Platform: Platform{
			APIBaseURL:   getEnv("PLATFORM_API_URL", ""),
			ClientID:     getEnv("PLATFORM_CLIENT_ID", ""),
			ClientSecret: getEnv("PLATFORM_CLIENT_SECRET", ""),
			TokenURL:     getEnv("PLATFORM_TOKEN_URL", ""),
			AccountID:    getEnv("PLATFORM_ACCOUNT_ID", ""),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Timezone:      getEnv("TIMEZONE", "America/New_York"),
		PostingTimes:  getEnvList("POSTING_TIMES", "09:00,13:00,18:00"),
		Topics:        getEnvList("TOPICS", defaultTopics),
		SecretKey:     getEnv("SECRET_KEY", ""),
		CookieName:    getEnv("COOKIE_NAME", "postpilot_session"),
		AdminAPIKey:   getEnv("ADMIN_API_KEY", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

const defaultTopics = "Hydration and Wellness,Alkaline Water Benefits,Healthy Lifestyle,Customer Stories,Water Science,Daily Habits"

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
