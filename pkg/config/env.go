package config

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "CATALOG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "CATALOG_APP_ENV"
	EnvPort      = "CATALOG_APP_PORT"
	EnvDBDSN     = "CATALOG_DB_DSN"
	EnvDBHost    = "CATALOG_DB_HOST"
	EnvDBUser    = "CATALOG_DB_USER"
	EnvDBName    = "CATALOG_DB_NAME"
	EnvRedisURL  = "CATALOG_REDIS_URL"
	EnvJWTSecret = "CATALOG_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
