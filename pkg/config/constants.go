package config

// EnvPrefix is intentionally empty; every field names its variable in full.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load and the test helpers.
const (
	EnvAppEnv     = "WAVECREST_APP_ENV"
	EnvPort       = "WAVECREST_APP_PORT"
	EnvDBDSN      = "WAVECREST_DB_DSN"
	EnvDBHost     = "WAVECREST_DB_HOST"
	EnvDBUser     = "WAVECREST_DB_USER"
	EnvDBName     = "WAVECREST_DB_NAME"
	EnvRedisURL   = "WAVECREST_REDIS_URL"
	EnvJWTSecret  = "WAVECREST_JWT_SECRET"
	EnvJWTIssuer  = "WAVECREST_JWT_ISSUER"
	EnvJWTExpMins = "WAVECREST_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID       = "WAVECREST_GCP_PROJECT_ID"
	EnvPubSubDomainTopic  = "WAVECREST_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubNotifSub     = "WAVECREST_PUBSUB_NOTIFICATION_SUBSCRIPTION"
	EnvConfirmationTTL    = "WAVECREST_ASSIGNMENT_CONFIRMATION_TTL"
	EnvRiskBlockThreshold = "WAVECREST_RISK_BLOCK_THRESHOLD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
