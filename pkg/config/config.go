package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	OTP          OTPConfig
	Pricing      PricingConfig
	Verification VerificationConfig
	Payout       PayoutConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CELLFLIP_APP_ENV" required:"true"`
	Port         string `envconfig:"CELLFLIP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CELLFLIP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CELLFLIP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CELLFLIP_DB_DSN"`
	Driver string `envconfig:"CELLFLIP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CELLFLIP_DB_HOST"`
	LegacyPort     int    `envconfig:"CELLFLIP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CELLFLIP_DB_USER"`
	LegacyPassword string `envconfig:"CELLFLIP_DB_PASSWORD"`
	LegacyName     string `envconfig:"CELLFLIP_DB_NAME"`
	LegacySSLMode  string `envconfig:"CELLFLIP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CELLFLIP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CELLFLIP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CELLFLIP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CELLFLIP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.LegacyUser),
		url.QueryEscape(d.LegacyPassword),
		d.LegacyHost,
		d.LegacyPort,
		d.LegacyName,
		d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CELLFLIP_REDIS_URL"`
	Address      string        `envconfig:"CELLFLIP_REDIS_ADDR"`
	Password     string        `envconfig:"CELLFLIP_REDIS_PASSWORD"`
	DB           int           `envconfig:"CELLFLIP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CELLFLIP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CELLFLIP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CELLFLIP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CELLFLIP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CELLFLIP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CELLFLIP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CELLFLIP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CELLFLIP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CELLFLIP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CELLFLIP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CELLFLIP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CELLFLIP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CELLFLIP_ARGON_KEY_LEN" default:"32"`
}

// OTPConfig boxes the rider login one-time codes.
type OTPConfig struct {
	TTL        time.Duration `envconfig:"CELLFLIP_OTP_TTL" default:"5m"`
	CodeLength int           `envconfig:"CELLFLIP_OTP_CODE_LENGTH" default:"6"`
}

// PricingConfig holds the valuation parameters for trade-in requests.
type PricingConfig struct {
	DepreciationPerYear  float64 `envconfig:"CELLFLIP_PRICING_DEPRECIATION_PER_YEAR" default:"0.10"`
	MaxDepreciation      float64 `envconfig:"CELLFLIP_PRICING_MAX_DEPRECIATION" default:"0.70"`
	RiderFlatPayoutCents int64   `envconfig:"CELLFLIP_PRICING_RIDER_FLAT_PAYOUT_CENTS" default:"2500"`
}

// VerificationConfig gates the rider verification flow.
type VerificationConfig struct {
	MinEvidenceImages int `envconfig:"CELLFLIP_VERIFICATION_MIN_EVIDENCE_IMAGES" default:"3"`
}

// PayoutConfig controls seller payout settlement. Requests created before
// BankDetailsCutover may be paid without stored bank details (legacy records
// predate the bank-details requirement).
type PayoutConfig struct {
	BankDetailsCutover time.Time `envconfig:"CELLFLIP_PAYOUT_BANK_DETAILS_CUTOVER" default:"1970-01-01T00:00:00Z"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CELLFLIP_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"CELLFLIP_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"CELLFLIP_PUBSUB_DOMAIN_TOPIC" default:"cellflip-domain-events"`
	NotificationsTopic string `envconfig:"CELLFLIP_PUBSUB_NOTIFICATIONS_TOPIC" default:"cellflip-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CELLFLIP_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CELLFLIP_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CELLFLIP_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsPort    string `envconfig:"CELLFLIP_OUTBOX_METRICS_PORT" default:"9091"`
}
