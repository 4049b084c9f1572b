package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string

	// JWTSecret signs session tokens. There is no default; startup fails without it.
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	LogLevel  string
	LogPretty bool

	CORSOrigins        []string
	LoginRatePerMinute int

	// AMQP fan-out of audit entries is disabled when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string

	StatsSchedule string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory, if present, seeds the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	rate, err := strconv.Atoi(getEnv("LOGIN_RATE_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE: %w", err)
	}
	pretty, err := strconv.ParseBool(getEnv("LOG_PRETTY", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}

	cfg := &Config{
		ServerPort:         port,
		DatabasePath:       getEnv("DATABASE_PATH", "./despesas.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           ttl,
		BcryptCost:         cost,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          pretty,
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LoginRatePerMinute: rate,
		AMQPURL:            os.Getenv("AMQP_URL"),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "despesas"),
		StatsSchedule:      getEnv("STATS_SCHEDULE", "@every 5m"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.ServerPort))
	}
	if c.DatabasePath == "" {
		problems = append(problems, "DATABASE_PATH cannot be empty")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid TOKEN_TTL %v: must be positive", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("invalid BCRYPT_COST %d: must be between %d and %d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.LoginRatePerMinute < 1 {
		problems = append(problems, fmt.Sprintf("invalid LOGIN_RATE_PER_MINUTE %d: must be at least 1", c.LoginRatePerMinute))
	}
	if c.AMQPURL != "" && c.AMQPExchange == "" {
		problems = append(problems, "AMQP_EXCHANGE cannot be empty when AMQP_URL is set")
	}
	if _, err := cron.ParseStandard(c.StatsSchedule); err != nil {
		problems = append(problems, fmt.Sprintf("invalid STATS_SCHEDULE %q: %v", c.StatsSchedule, err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
