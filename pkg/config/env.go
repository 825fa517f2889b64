package config

const EnvPrefix = "MARKETFLOW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CartLockMemory = "memory"
	CartLockRedis  = "redis"

	defaultSQLiteDSN = "file:marketflow.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv   = "MARKETFLOW_APP_ENV"
	EnvPort     = "MARKETFLOW_APP_PORT"
	EnvLogLevel = "MARKETFLOW_LOG_LEVEL"

	EnvDBDSN    = "MARKETFLOW_DB_DSN"
	EnvDBDriver = "MARKETFLOW_DB_DRIVER"
	EnvDBHost   = "MARKETFLOW_DB_HOST"
	EnvDBUser   = "MARKETFLOW_DB_USER"
	EnvDBName   = "MARKETFLOW_DB_NAME"

	EnvRedisURL = "MARKETFLOW_REDIS_URL"

	EnvSessionSecret     = "MARKETFLOW_SESSION_SECRET"
	EnvSessionIssuer     = "MARKETFLOW_SESSION_ISSUER"
	EnvSessionTTLMinutes = "MARKETFLOW_SESSION_TTL_MINUTES"

	EnvCatalogLookupTimeout = "MARKETFLOW_CATALOG_LOOKUP_TIMEOUT"

	EnvPricingTaxRate               = "MARKETFLOW_PRICING_TAX_RATE"
	EnvPricingFreeShippingThreshold = "MARKETFLOW_PRICING_FREE_SHIPPING_THRESHOLD"
	EnvPricingFlatShipping          = "MARKETFLOW_PRICING_FLAT_SHIPPING"

	EnvCORSAllowedOrigins = "MARKETFLOW_CORS_ALLOWED_ORIGINS"

	EnvCartMaxQuantity = "MARKETFLOW_CART_MAX_QUANTITY"
	EnvCartLockBackend = "MARKETFLOW_CART_LOCK_BACKEND"

	EnvGCPProjectID                  = "MARKETFLOW_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic             = "MARKETFLOW_PUBSUB_ORDERS_TOPIC"
	EnvPubSubFulfillmentSubscription = "MARKETFLOW_PUBSUB_FULFILLMENT_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
