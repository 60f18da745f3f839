package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AuthConfig struct {
	JWTSecret    string
	JWTIssuer    string
	ChallengeTTL time.Duration
	SessionTTL   time.Duration
}

type ServerConfig struct {
	Addr         string
	UploadDir    string
	SyncInterval time.Duration
}

// LoadEnv loads a local .env if present. Missing file is fine; real
// deployments set the environment directly.
func LoadEnv() {
	_ = godotenv.Load()
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("QISATI_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("QISATI_JWT_ISSUER")
	if issuer == "" {
		issuer = "qisati"
	}

	return AuthConfig{
		JWTSecret:    secret,
		JWTIssuer:    issuer,
		ChallengeTTL: envDuration("QISATI_CHALLENGE_TTL", 5*time.Minute),
		SessionTTL:   time.Duration(envInt("QISATI_SESSION_TTL_DAYS", 30)) * 24 * time.Hour,
	}
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("QISATI_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	uploadDir := os.Getenv("QISATI_UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return ServerConfig{
		Addr:         addr,
		UploadDir:    uploadDir,
		SyncInterval: envDuration("QISATI_SYNC_INTERVAL", 5*time.Minute),
	}
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
