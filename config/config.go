package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Calendar provider.
	CalendarProvider      string `mapstructure:"CALENDAR_PROVIDER"`
	CalendarID            string `mapstructure:"CALENDAR_ID"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	DefaultTimezone       string `mapstructure:"DEFAULT_TIMEZONE"`

	// Language model.
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel              string `mapstructure:"GEMINI_MODEL"`
	RuleBasedFallbackEnabled bool   `mapstructure:"RULE_BASED_FALLBACK_ENABLED"`

	// Session storage.
	SessionStore      string `mapstructure:"SESSION_STORE"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB    int    `mapstructure:"REDIS_SESSION_DB"`

	// Booking records. Empty DatabaseURL keeps records in memory.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Upstream call policy.
	UpstreamTimeoutSeconds   int `mapstructure:"UPSTREAM_TIMEOUT_SECONDS"`
	RetryMaxAttempts         int `mapstructure:"RETRY_MAX_ATTEMPTS"`
	RetryInitialIntervalMs   int `mapstructure:"RETRY_INITIAL_INTERVAL_MS"`
	RetryMaxIntervalMs       int `mapstructure:"RETRY_MAX_INTERVAL_MS"`
	AvailabilityCacheSize    int `mapstructure:"AVAILABILITY_CACHE_SIZE"`
	AvailabilityCacheSeconds int `mapstructure:"AVAILABILITY_CACHE_TTL_SECONDS"`

	// Comma-separated proxy IPs or CIDRs whose forwarding headers are honored.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// Requests per minute, per client, per route.
	RateLimitEvents       int `mapstructure:"RATE_LIMIT_EVENTS"`
	RateLimitAvailability int `mapstructure:"RATE_LIMIT_AVAILABILITY"`
	RateLimitSuggest      int `mapstructure:"RATE_LIMIT_SUGGEST"`
	RateLimitGetEvent     int `mapstructure:"RATE_LIMIT_GET_EVENT"`
	RateLimitCancelEvent  int `mapstructure:"RATE_LIMIT_CANCEL_EVENT"`
	RateLimitChat         int `mapstructure:"RATE_LIMIT_CHAT"`
}

var AppConfig Config

var ErrNoResponder = errors.New("no language model configured and rule-based fallback disabled")

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CALENDAR_PROVIDER", "memory")
	v.SetDefault("CALENDAR_ID", "primary")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "service-accounts.json")
	v.SetDefault("DEFAULT_TIMEZONE", "UTC")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	v.SetDefault("RULE_BASED_FALLBACK_ENABLED", true)
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_TTL_MINUTES", 30)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_NAME", "calbook")
	v.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 10)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("RETRY_INITIAL_INTERVAL_MS", 1000)
	v.SetDefault("RETRY_MAX_INTERVAL_MS", 10000)
	v.SetDefault("AVAILABILITY_CACHE_SIZE", 32)
	v.SetDefault("AVAILABILITY_CACHE_TTL_SECONDS", 60)
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("RATE_LIMIT_EVENTS", 10)
	v.SetDefault("RATE_LIMIT_AVAILABILITY", 30)
	v.SetDefault("RATE_LIMIT_SUGGEST", 20)
	v.SetDefault("RATE_LIMIT_GET_EVENT", 15)
	v.SetDefault("RATE_LIMIT_CANCEL_EVENT", 10)
	v.SetDefault("RATE_LIMIT_CHAT", 60)
}

// Load reads .env, an optional config.yaml and the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables only")
	}

	v := viper.New()
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadConfig populates AppConfig or exits.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Validate rejects configurations that leave the chat without any responder.
func (c Config) Validate() error {
	if !c.LLMEnabled() && !c.RuleBasedFallbackEnabled {
		return ErrNoResponder
	}
	return nil
}

// LLMEnabled reports whether a language model key is configured.
func (c Config) LLMEnabled() bool {
	return c.GeminiAPIKey != ""
}

// TrustedProxyList is nil when no proxy is trusted, so client IPs come from
// the connection alone.
func (c Config) TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) AvailabilityCacheTTL() time.Duration {
	return time.Duration(c.AvailabilityCacheSeconds) * time.Second
}

// Location resolves DefaultTimezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil || c.DefaultTimezone == "" {
		return time.UTC
	}
	return loc
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
