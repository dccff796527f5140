package config

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config carries every runtime setting the service needs. It is built
// once in main and passed down explicitly; nothing reads the environment
// after startup.
type Config struct {
	DatabaseDSN       string
	HTTPAddr          string
	GatewayServerKey  string
	AllowedOrigin     string
	PublicSiteEnabled bool
}

func Load() (Config, error) {
	cfg := Config{
		DatabaseDSN:       os.Getenv("DATABASE_DSN"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		GatewayServerKey:  os.Getenv("GATEWAY_SERVER_KEY"),
		AllowedOrigin:     getenv("ALLOWED_ORIGIN", "http://localhost:3000"),
		PublicSiteEnabled: os.Getenv("PUBLIC_SITE_ENABLED") == "true",
	}

	if cfg.DatabaseDSN == "" {
		return cfg, fmt.Errorf("DATABASE_DSN is required")
	}
	if cfg.GatewayServerKey == "" {
		return cfg, fmt.Errorf("GATEWAY_SERVER_KEY is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}
