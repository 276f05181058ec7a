package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server Settings
	AppPort     string
	HOST        string
	DatabaseURL string

	// JWT Settings
	JWTSecret     string
	JWTExpiration time.Duration

	// SMTP Settings
	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPPassword string

	// Payment Gateway Settings
	PayMongoBaseURL   string
	PayMongoSecretKey string
	PaymentRedirect   string

	// CORS Settings
	CORSAllowOrigins string
	CORSAllowMethods string
	CORSAllowHeaders string
}

func LoadConfig() *Config {
	// .env is optional outside local development
	_ = godotenv.Load()

	jwtTTL := 72 * time.Hour
	if raw := os.Getenv("JWT_EXPIRES_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			jwtTTL = time.Duration(hours) * time.Hour
		}
	}

	smtpPort := 465
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			smtpPort = p
		}
	}

	config := &Config{
		AppPort:     getEnv("PORT", "8080"),
		HOST:        getEnv("HOST", "0.0.0.0"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: jwtTTL,

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     smtpPort,
		SMTPFrom:     os.Getenv("CONTACT_EMAIL"),
		SMTPPassword: os.Getenv("GMAIL_APP_PASSWORD"),

		PayMongoBaseURL:   os.Getenv("PAYMONGO_API_URL"),
		PayMongoSecretKey: getEnv("PAYMONGO_SECRET_KEY", "sk_test_"),
		PaymentRedirect:   getEnv("PAYMENT_REDIRECT_URL", "http://localhost:3000/orders"),

		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		CORSAllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		CORSAllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}

	return config
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
