package config

const (
	EnvPrefix = "CELLFLIP"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv    = "CELLFLIP_APP_ENV"
	EnvPort      = "CELLFLIP_APP_PORT"
	EnvDBDSN     = "CELLFLIP_DB_DSN"
	EnvRedisURL  = "CELLFLIP_REDIS_URL"
	EnvJWTSecret = "CELLFLIP_JWT_SECRET"
	EnvJWTIssuer = "CELLFLIP_JWT_ISSUER"
)
