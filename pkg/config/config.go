package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Catalog      CatalogConfig
	Pricing      PricingConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Maintenance  MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKETFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"MARKETFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MARKETFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETFLOW_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"MARKETFLOW_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MARKETFLOW_DB_DSN"`
	Driver string `envconfig:"MARKETFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MARKETFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"MARKETFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MARKETFLOW_DB_USER"`
	LegacyPassword string `envconfig:"MARKETFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"MARKETFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"MARKETFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARKETFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKETFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MARKETFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"MARKETFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig configures guest cart session tokens.
type SessionConfig struct {
	Secret     string `envconfig:"MARKETFLOW_SESSION_SECRET" required:"true"`
	Issuer     string `envconfig:"MARKETFLOW_SESSION_ISSUER" default:"marketflow"`
	TTLMinutes int    `envconfig:"MARKETFLOW_SESSION_TTL_MINUTES" default:"43200"`
}

// TTL returns the session token lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

type CatalogConfig struct {
	LookupTimeout time.Duration `envconfig:"MARKETFLOW_CATALOG_LOOKUP_TIMEOUT" default:"2s"`
}

type PricingConfig struct {
	TaxRate               string `envconfig:"MARKETFLOW_PRICING_TAX_RATE" default:"0.08"`
	FreeShippingThreshold string `envconfig:"MARKETFLOW_PRICING_FREE_SHIPPING_THRESHOLD" default:"25.00"`
	FlatShipping          string `envconfig:"MARKETFLOW_PRICING_FLAT_SHIPPING" default:"5.99"`
}

// Decimals parses the configured pricing knobs.
func (p PricingConfig) Decimals() (taxRate, threshold, flat decimal.Decimal, err error) {
	if taxRate, err = decimal.NewFromString(p.TaxRate); err != nil {
		return taxRate, threshold, flat, fmt.Errorf("%s: %w", EnvPricingTaxRate, err)
	}
	if threshold, err = decimal.NewFromString(p.FreeShippingThreshold); err != nil {
		return taxRate, threshold, flat, fmt.Errorf("%s: %w", EnvPricingFreeShippingThreshold, err)
	}
	if flat, err = decimal.NewFromString(p.FlatShipping); err != nil {
		return taxRate, threshold, flat, fmt.Errorf("%s: %w", EnvPricingFlatShipping, err)
	}
	return taxRate, threshold, flat, nil
}

func (p PricingConfig) validate() error {
	taxRate, threshold, flat, err := p.Decimals()
	if err != nil {
		return err
	}
	if taxRate.IsNegative() || threshold.IsNegative() || flat.IsNegative() {
		return fmt.Errorf("pricing values must be non-negative")
	}
	return nil
}

type CartConfig struct {
	MaxQuantity int `envconfig:"MARKETFLOW_CART_MAX_QUANTITY" default:"99"`
	// LockBackend selects the per-session lock: memory for a single API
	// instance, redis when several instances share carts.
	LockBackend string        `envconfig:"MARKETFLOW_CART_LOCK_BACKEND" default:"memory"`
	LockTTL     time.Duration `envconfig:"MARKETFLOW_CART_LOCK_TTL" default:"10s"`
}

// UsesRedisLock reports whether cart locks are held in Redis.
func (c CartConfig) UsesRedisLock() bool {
	return strings.EqualFold(strings.TrimSpace(c.LockBackend), CartLockRedis)
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"MARKETFLOW_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MARKETFLOW_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MARKETFLOW_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic             string `envconfig:"MARKETFLOW_PUBSUB_ORDERS_TOPIC" default:"mf-order-events"`
	FulfillmentSubscription string `envconfig:"MARKETFLOW_PUBSUB_FULFILLMENT_SUBSCRIPTION" default:"mf-fulfillment-updates"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MARKETFLOW_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MARKETFLOW_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MARKETFLOW_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type MaintenanceConfig struct {
	Interval        time.Duration `envconfig:"MARKETFLOW_MAINTENANCE_INTERVAL" default:"1h"`
	OutboxRetention time.Duration `envconfig:"MARKETFLOW_MAINTENANCE_OUTBOX_RETENTION" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
