package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	RedisAddr     string
	UploadDir     string
	PublicBaseURL string
	CORSOrigins   string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	AdminEmail    string
	AdminPassword string

	ShutdownTimeout time.Duration
	AuthRateLimit   int
	AuthRateWindow  time.Duration
}

func Load() Config {
	return Config{
		Addr:          getEnv("JUICE_SHOP_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getDuration("TOKEN_TTL", 24*time.Hour),
		ResetTokenTTL: getDuration("RESET_TOKEN_TTL", 15*time.Minute),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@juiceshop.local"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		AuthRateLimit:   getInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:  getDuration("AUTH_RATE_WINDOW", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
