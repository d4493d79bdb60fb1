package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	SLA      SLAConfig
	Workflow WorkflowConfig
	Notify   NotifyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SLAConfig carries the policy table and evaluation tuning.
type SLAConfig struct {
	// TargetHours maps priority name to resolution target in hours.
	TargetHours map[string]float64
	// AtRiskThreshold is the fraction of target at which an open ticket
	// is flagged at-risk. Default 0.8.
	AtRiskThreshold float64
	// AgingBoundsHours are ascending bucket lower bounds starting at 0.
	AgingBoundsHours []float64
	// PollIntervalSeconds drives the background re-evaluation cadence.
	PollIntervalSeconds int
}

// WorkflowConfig carries status workflow policy switches.
type WorkflowConfig struct {
	// CreatorCancel lets a ticket's creator cancel (close) it while New.
	CreatorCancel bool
}

// NotifyConfig holds stub notification endpoints and the redis channel
// alerts are published on.
type NotifyConfig struct {
	EmailFrom    string
	WebhookURL   string
	RedisChannel string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	targets, err := parseTargetHours(os.Getenv("SLA_TARGET_HOURS"))
	if err != nil {
		return nil, err
	}

	bounds, err := parseAgingBounds(os.Getenv("SLA_AGING_BOUNDS_HOURS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "sla-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		SLA: SLAConfig{
			TargetHours:         targets,
			AtRiskThreshold:     getEnvAsFloat("SLA_AT_RISK_THRESHOLD", 0.8),
			AgingBoundsHours:    bounds,
			PollIntervalSeconds: getEnvAsInt("SLA_POLL_INTERVAL_SECONDS", 30),
		},
		Workflow: WorkflowConfig{
			CreatorCancel: getEnvAsBool("WORKFLOW_CREATOR_CANCEL", true),
		},
		Notify: NotifyConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
			RedisChannel: getEnv("NOTIFY_REDIS_CHANNEL", "alerts"),
		},
	}

	if err := cfg.SLA.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects a policy table that would produce silently-wrong numbers.
func (s SLAConfig) Validate() error {
	if len(s.TargetHours) == 0 {
		return fmt.Errorf("sla policy table is empty")
	}
	for priority, hours := range s.TargetHours {
		if hours <= 0 {
			return fmt.Errorf("sla target for %s must be positive, got %v", priority, hours)
		}
	}
	if s.AtRiskThreshold <= 0 || s.AtRiskThreshold >= 1 {
		return fmt.Errorf("sla at-risk threshold must be in (0,1), got %v", s.AtRiskThreshold)
	}
	if len(s.AgingBoundsHours) == 0 || s.AgingBoundsHours[0] != 0 {
		return fmt.Errorf("aging bounds must start at 0")
	}
	for i := 1; i < len(s.AgingBoundsHours); i++ {
		if s.AgingBoundsHours[i] <= s.AgingBoundsHours[i-1] {
			return fmt.Errorf("aging bounds must be strictly increasing")
		}
	}
	if s.PollIntervalSeconds <= 0 {
		return fmt.Errorf("sla poll interval must be positive")
	}
	return nil
}

// PollInterval returns the poll cadence as a duration.
func (s SLAConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// DefaultTargetHours is the observed production policy.
func DefaultTargetHours() map[string]float64 {
	return map[string]float64{
		"Critical": 4,
		"High":     8,
		"Medium":   24,
		"Low":      72,
	}
}

// DefaultAgingBoundsHours is the observed bucket partition.
func DefaultAgingBoundsHours() []float64 {
	return []float64{0, 24, 48, 72}
}

// parseTargetHours accepts "Critical=4,High=8,Medium=24,Low=72".
func parseTargetHours(raw string) (map[string]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultTargetHours(), nil
	}
	targets := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid SLA_TARGET_HOURS entry %q", pair)
		}
		hours, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SLA_TARGET_HOURS value %q: %w", parts[1], err)
		}
		targets[strings.TrimSpace(parts[0])] = hours
	}
	return targets, nil
}

// parseAgingBounds accepts "0,24,48,72".
func parseAgingBounds(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultAgingBoundsHours(), nil
	}
	parts := strings.Split(raw, ",")
	bounds := make([]float64, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SLA_AGING_BOUNDS_HOURS value %q: %w", part, err)
		}
		bounds = append(bounds, val)
	}
	sort.Float64s(bounds)
	return bounds, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
