package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tourshop/internal/inventory"
	"github.com/tourshop/internal/logger"
	"github.com/tourshop/internal/payment/stripe"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Cart      CartConfig      `mapstructure:"cart"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

// ServerConfig HTTP listener settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig log output settings
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// ToLoggerOptions converts to logger options.
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Stdout:     c.Stdout,
	}
}

// DatabasePoolConfig connection pool settings
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig database settings
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig admin token settings
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig cache connection
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig asynq connection and worker settings
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig login throttling and password policy
type SecurityConfig struct {
	LoginRateLimit    RateLimitConfig      `mapstructure:"login_rate_limit"`
	CheckoutRateLimit RateLimitConfig      `mapstructure:"checkout_rate_limit"`
	GiftCardRateLimit RateLimitConfig      `mapstructure:"gift_card_rate_limit"`
	PasswordPolicy    PasswordPolicyConfig `mapstructure:"password_policy"`
}

// RateLimitConfig fixed window limit
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// PasswordPolicyConfig admin password rules
type PasswordPolicyConfig struct {
	MinLength      int  `mapstructure:"min_length"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireNumber  bool `mapstructure:"require_number"`
	RequireSpecial bool `mapstructure:"require_special"`
}

// StripeConfig payment processor credentials
type StripeConfig struct {
	SecretKey               string   `mapstructure:"secret_key"`
	PublishableKey          string   `mapstructure:"publishable_key"`
	WebhookSecret           string   `mapstructure:"webhook_secret"`
	APIBaseURL              string   `mapstructure:"api_base_url"`
	WebhookToleranceSeconds int      `mapstructure:"webhook_tolerance_seconds"`
	TimeoutSeconds          int      `mapstructure:"timeout_seconds"`
	Currency                string   `mapstructure:"currency"`
	PaymentMethodTypes      []string `mapstructure:"payment_method_types"`
}

// ToClientConfig converts to payment processor client settings.
func (c StripeConfig) ToClientConfig() stripe.Config {
	return stripe.Config{
		SecretKey:               c.SecretKey,
		PublishableKey:          c.PublishableKey,
		WebhookSecret:           c.WebhookSecret,
		APIBaseURL:              c.APIBaseURL,
		WebhookToleranceSeconds: c.WebhookToleranceSeconds,
		Timeout:                 time.Duration(c.TimeoutSeconds) * time.Second,
		PaymentMethodTypes:      c.PaymentMethodTypes,
	}
}

// InventoryConfig inventory platform credentials and pacing
type InventoryConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	ClientID         string `mapstructure:"client_id"`
	ClientSecret     string `mapstructure:"client_secret"`
	ShopID           string `mapstructure:"shop_id"`
	BrandID          string `mapstructure:"brand_id"`
	RateLimitDelayMS int    `mapstructure:"rate_limit_delay_ms"`
	MaxBackoffMS     int    `mapstructure:"max_backoff_ms"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	TestProductID    string `mapstructure:"test_product_id"`
}

// Enabled reports whether credentials are present.
func (c InventoryConfig) Enabled() bool {
	return strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.ClientID) != ""
}

// ToClientConfig converts to inventory client settings.
func (c InventoryConfig) ToClientConfig() inventory.Config {
	return inventory.Config{
		BaseURL:      c.BaseURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Timeout:      time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

// BaseDelay pause between products during catalog sync.
func (c InventoryConfig) BaseDelay() time.Duration {
	return time.Duration(c.RateLimitDelayMS) * time.Millisecond
}

// MaxBackoff upper bound of any catalog sync wait.
func (c InventoryConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMS) * time.Millisecond
}

// CheckoutConfig pricing constants and redirect settings
type CheckoutConfig struct {
	SiteOrigin        string         `mapstructure:"site_origin"`
	DefaultLocale     string         `mapstructure:"default_locale"`
	PendingTTLMinutes int            `mapstructure:"pending_ttl_minutes"`
	PersonalGuideFee  float64        `mapstructure:"personal_guide_fee"`
	ExtraHourFee      float64        `mapstructure:"extra_hour_fee"`
	WeekendFee        float64        `mapstructure:"weekend_fee"`
	EveningFee        float64        `mapstructure:"evening_fee"`
	EveningStartHour  int            `mapstructure:"evening_start_hour"`
	Shipping          ShippingConfig `mapstructure:"shipping"`
}

// ShippingConfig webshop shipping rule
type ShippingConfig struct {
	DomesticFee      float64  `mapstructure:"domestic_fee"`
	InternationalFee float64  `mapstructure:"international_fee"`
	FreeThreshold    float64  `mapstructure:"free_threshold"`
	AllowedCountries []string `mapstructure:"allowed_countries"`
}

// CartConfig cart session lifetime
type CartConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// WorkerConfig background loop intervals
type WorkerConfig struct {
	PendingCleanupIntervalSeconds int `mapstructure:"pending_cleanup_interval_seconds"`
	CatalogSyncIntervalMinutes    int `mapstructure:"catalog_sync_interval_minutes"`
}

// NotifyConfig outbound automation webhook
type NotifyConfig struct {
	BookingWebhookURL string `mapstructure:"booking_webhook_url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
}

// Load reads config.yml, applies defaults and environment overrides.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("./etc")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // stripe.secret_key -> STRIPE_SECRET_KEY

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("parse config: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "tourshop.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.stdout", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/tourshop.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 12)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "ts")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
		"sync":     1,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Authorization",
		"Accept-Language",
		"X-Requested-With",
		"X-Cart-Session",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.checkout_rate_limit.window_seconds", 60)
	v.SetDefault("security.checkout_rate_limit.max_attempts", 10)
	v.SetDefault("security.gift_card_rate_limit.window_seconds", 60)
	v.SetDefault("security.gift_card_rate_limit.max_attempts", 20)
	v.SetDefault("security.password_policy.min_length", 10)
	v.SetDefault("security.password_policy.require_upper", true)
	v.SetDefault("security.password_policy.require_lower", true)
	v.SetDefault("security.password_policy.require_number", true)
	v.SetDefault("stripe.api_base_url", "https://api.stripe.com")
	v.SetDefault("stripe.webhook_tolerance_seconds", 300)
	v.SetDefault("stripe.timeout_seconds", 12)
	v.SetDefault("stripe.currency", "eur")
	v.SetDefault("stripe.payment_method_types", []string{"card", "bancontact", "ideal"})
	v.SetDefault("inventory.base_url", "https://api.stoqflow.com")
	v.SetDefault("inventory.rate_limit_delay_ms", 3000)
	v.SetDefault("inventory.max_backoff_ms", 30000)
	v.SetDefault("inventory.timeout_seconds", 15)
	v.SetDefault("checkout.site_origin", "http://localhost:3000")
	v.SetDefault("checkout.default_locale", "nl")
	v.SetDefault("checkout.pending_ttl_minutes", 1440)
	v.SetDefault("checkout.personal_guide_fee", 125)
	v.SetDefault("checkout.extra_hour_fee", 150)
	v.SetDefault("checkout.weekend_fee", 25)
	v.SetDefault("checkout.evening_fee", 25)
	v.SetDefault("checkout.evening_start_hour", 18)
	v.SetDefault("checkout.shipping.domestic_fee", 7.50)
	v.SetDefault("checkout.shipping.international_fee", 14.99)
	v.SetDefault("checkout.shipping.free_threshold", 150)
	v.SetDefault("checkout.shipping.allowed_countries", []string{"BE", "NL", "FR", "DE", "LU"})
	v.SetDefault("cart.ttl_hours", 168)
	v.SetDefault("worker.pending_cleanup_interval_seconds", 600)
	v.SetDefault("worker.catalog_sync_interval_minutes", 0)
	v.SetDefault("notify.booking_webhook_url", "")
	v.SetDefault("notify.timeout_seconds", 10)
}
