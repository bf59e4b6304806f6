package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig
	Security SecurityConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type SecurityConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	PasswordMinLength int
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Username        string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type LoggingConfig struct {
	Level       string
	Environment string
}

type CORSConfig struct {
	AllowedOrigin string
}

// Load builds the process configuration from the environment. The token
// signing secret has no default: a process without JWT_SECRET must not
// start.
func Load() (*Configuration, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set; refusing to start with an insecure signing key")
	}

	cfg := &Configuration{
		Server: ServerConfig{
			Port:         envOr("PORT", "5000"),
			ReadTimeout:  envDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: envDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  envDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Security: SecurityConfig{
			JWTSecret:         secret,
			TokenTTL:          envDuration("TOKEN_TTL", 24*time.Hour),
			PasswordMinLength: envInt("PASSWORD_MIN_LENGTH", 6),
		},
		Database: DatabaseConfig{
			Host:            envOr("DB_HOST", "localhost"),
			Port:            envOr("DB_PORT", "5432"),
			Username:        envOr("DB_USER", "postgres"),
			Password:        envOr("DB_PASSWORD", "password"),
			Name:            envOr("DB_NAME", "policypilot"),
			SSLMode:         envOr("DB_SSLMODE", "disable"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:       envOr("LOG_LEVEL", "info"),
			Environment: envOr("APP_ENV", "development"),
		},
		CORS: CORSConfig{
			AllowedOrigin: envOr("FRONTEND_URL", "http://localhost:9002"),
		},
	}

	return cfg, nil
}

func (c *Configuration) LogConfig(logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("port", c.Server.Port),
		zap.Duration("read_timeout", c.Server.ReadTimeout),
		zap.Duration("write_timeout", c.Server.WriteTimeout),
		zap.Duration("token_ttl", c.Security.TokenTTL),
		zap.String("jwt_secret", "[REDACTED]"),
		zap.String("database_host", c.Database.Host),
		zap.String("database_name", c.Database.Name),
		zap.String("frontend_origin", c.CORS.AllowedOrigin),
	)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
