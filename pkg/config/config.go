package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Service    ServiceConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Assignment AssignmentConfig
	FeeSplit   FeeSplitConfig
	Risk       RiskConfig
	GCP        GCPConfig
	PubSub     PubSubConfig
	Outbox     OutboxConfig
	Cron       CronConfig
	Eventing   EventingConfig
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
	Env          string `envconfig:"WAVECREST_APP_ENV" required:"true"`
	Port         string `envconfig:"WAVECREST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WAVECREST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WAVECREST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"WAVECREST_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"WAVECREST_DB_DSN"`
	Driver string `envconfig:"WAVECREST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WAVECREST_DB_HOST"`
	LegacyPort     int    `envconfig:"WAVECREST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAVECREST_DB_USER"`
	LegacyPassword string `envconfig:"WAVECREST_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAVECREST_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAVECREST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAVECREST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAVECREST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAVECREST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAVECREST_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"WAVECREST_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WAVECREST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WAVECREST_REDIS_ADDR"`
	Password     string        `envconfig:"WAVECREST_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAVECREST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAVECREST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAVECREST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAVECREST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAVECREST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAVECREST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WAVECREST_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WAVECREST_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WAVECREST_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AssignmentConfig carries the crew assignment policy knobs.
type AssignmentConfig struct {
	// ConfirmationTTL is the window a guide has to accept or reject a new
	// assignment before the expiry sweep claims it.
	ConfirmationTTL       time.Duration `envconfig:"WAVECREST_ASSIGNMENT_CONFIRMATION_TTL" default:"72h"`
	MinRejectionReasonLen int           `envconfig:"WAVECREST_ASSIGNMENT_MIN_REJECTION_REASON_LEN" default:"10"`
}

// FeeSplitConfig names the role weight table used by the fee allocation engine.
type FeeSplitConfig struct {
	RoleWeights map[string]string `envconfig:"WAVECREST_FEESPLIT_ROLE_WEIGHTS" default:"lead:0.6,support:0.3,assistant:0.3,driver:0.1,photographer:0.1"`
}

// RiskConfig names the safety gating thresholds consulted before departure.
type RiskConfig struct {
	BlockThreshold   int `envconfig:"WAVECREST_RISK_BLOCK_THRESHOLD" default:"70"`
	WaveFactor       int `envconfig:"WAVECREST_RISK_WAVE_FACTOR" default:"20"`
	WindFactor       int `envconfig:"WAVECREST_RISK_WIND_FACTOR" default:"10"`
	CrewPenalty      int `envconfig:"WAVECREST_RISK_CREW_PENALTY" default:"25"`
	EquipmentPenalty int `envconfig:"WAVECREST_RISK_EQUIPMENT_PENALTY" default:"30"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WAVECREST_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"WAVECREST_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WAVECREST_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic              string `envconfig:"WAVECREST_PUBSUB_DOMAIN_TOPIC" required:"true"`
	NotificationSubscription string `envconfig:"WAVECREST_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WAVECREST_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WAVECREST_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WAVECREST_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"WAVECREST_OUTBOX_RETENTION_DAYS" default:"14"`
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"WAVECREST_CRON_INTERVAL" default:"5m"`
	LockTTL               time.Duration `envconfig:"WAVECREST_CRON_LOCK_TTL" default:"10m"`
	NotificationRetention time.Duration `envconfig:"WAVECREST_CRON_NOTIFICATION_RETENTION" default:"720h"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"WAVECREST_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
