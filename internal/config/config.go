package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	TokenTTL               time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	MatchCacheTTL          time.Duration
	NotificationChannel    string
	SSEKeepAlive           time.Duration
	AvatarMaxMB            int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MENTORLINK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "MentorLink API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.token_ttl", "24h")
	v.SetDefault("cloudinary.folder", "mentorlink/avatars")
	v.SetDefault("matching.cache_ttl", "5m")
	v.SetDefault("notification.channel", "mentorlink")
	v.SetDefault("sse.keepalive", "30s")
	v.SetDefault("avatar.max_mb", 5)

	matchTTL, err := time.ParseDuration(v.GetString("matching.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid match cache ttl: %w", err)
	}

	tokenTTL, err := time.ParseDuration(v.GetString("jwt.token_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	keepAlive, err := time.ParseDuration(v.GetString("sse.keepalive"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keepalive: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		TokenTTL:               tokenTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		MatchCacheTTL:          matchTTL,
		NotificationChannel:    v.GetString("notification.channel"),
		SSEKeepAlive:           keepAlive,
		AvatarMaxMB:            v.GetInt("avatar.max_mb"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AvatarMaxMB <= 0 {
		cfg.AvatarMaxMB = 5
	}

	return cfg, nil
}
