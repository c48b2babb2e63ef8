// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	DBPath   string
	HTTPAddr string

	JWTSecret string
	JWTTTL    time.Duration

	// VAPID credentials for web push delivery.
	VAPIDSubject    string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// FromEnv builds a Config from environment variables, loading a .env file
// first if one exists.
func FromEnv() (Config, error) {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	var c Config
	c.DBPath = strings.TrimSpace(os.Getenv("DB_PATH"))
	if c.DBPath == "" {
		c.DBPath = "./data/wayfarer.db"
	}

	c.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}

	c.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if c.JWTSecret == "" {
		return c, fmt.Errorf("JWT_SECRET is empty")
	}

	c.JWTTTL = 24 * time.Hour
	if ttl := strings.TrimSpace(os.Getenv("JWT_TTL")); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return c, fmt.Errorf("invalid JWT_TTL: %w", err)
		}
		c.JWTTTL = d
	}

	c.VAPIDSubject = strings.TrimSpace(os.Getenv("VAPID_SUBJECT"))
	c.VAPIDPublicKey = strings.TrimSpace(os.Getenv("VAPID_PUBLIC_KEY"))
	c.VAPIDPrivateKey = strings.TrimSpace(os.Getenv("VAPID_PRIVATE_KEY"))
	if c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
		return c, fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are required")
	}
	if c.VAPIDSubject == "" {
		c.VAPIDSubject = "mailto:admin@wayfarer.app"
	}

	return c, nil
}
