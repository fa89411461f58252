package config

// EnvPrefix is passed to envconfig; individual fields carry full variable names.
const EnvPrefix = "syncup"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "SYNCUP_APP_ENV"
	EnvPort                   = "SYNCUP_APP_PORT"
	EnvSiteURL                = "SYNCUP_SITE_URL"
	EnvDBDSN                  = "SYNCUP_DB_DSN"
	EnvDBHost                 = "SYNCUP_DB_HOST"
	EnvDBUser                 = "SYNCUP_DB_USER"
	EnvDBName                 = "SYNCUP_DB_NAME"
	EnvRedisURL               = "SYNCUP_REDIS_URL"
	EnvJWTSecret              = "SYNCUP_JWT_SECRET"
	EnvJWTIssuer              = "SYNCUP_JWT_ISSUER"
	EnvJWTExpMins             = "SYNCUP_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SYNCUP_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "SYNCUP_GCP_PROJECT_ID"
	EnvPubSubActivityTopic    = "SYNCUP_PUBSUB_ACTIVITY_TOPIC"
	EnvPubSubActivitySub      = "SYNCUP_PUBSUB_ACTIVITY_SUBSCRIPTION"
	EnvXenditAPIKey           = "SYNCUP_XENDIT_API_KEY"
	EnvXenditCallbackToken    = "SYNCUP_XENDIT_CALLBACK_TOKEN"
	EnvResendAPIKey           = "SYNCUP_RESEND_API_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
