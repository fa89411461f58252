package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Xendit        XenditConfig
	Resend        ResendConfig
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
	Env          string `envconfig:"SYNCUP_APP_ENV" required:"true"`
	Port         string `envconfig:"SYNCUP_APP_PORT" required:"true"`
	SiteURL      string `envconfig:"SYNCUP_SITE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"SYNCUP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SYNCUP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SYNCUP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SYNCUP_DB_DSN"`
	Driver string `envconfig:"SYNCUP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SYNCUP_DB_HOST"`
	LegacyPort     int    `envconfig:"SYNCUP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SYNCUP_DB_USER"`
	LegacyPassword string `envconfig:"SYNCUP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SYNCUP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SYNCUP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SYNCUP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SYNCUP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SYNCUP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SYNCUP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SYNCUP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SYNCUP_REDIS_ADDR"`
	Password     string        `envconfig:"SYNCUP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SYNCUP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SYNCUP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SYNCUP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SYNCUP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SYNCUP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SYNCUP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SYNCUP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SYNCUP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SYNCUP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SYNCUP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SYNCUP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SYNCUP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SYNCUP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SYNCUP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SYNCUP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SYNCUP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SYNCUP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SYNCUP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SYNCUP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SYNCUP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SYNCUP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SYNCUP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SYNCUP_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SYNCUP_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SYNCUP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SYNCUP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ActivityTopic        string `envconfig:"SYNCUP_PUBSUB_ACTIVITY_TOPIC" default:"syncup-activity-events"`
	ActivitySubscription string `envconfig:"SYNCUP_PUBSUB_ACTIVITY_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SYNCUP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SYNCUP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SYNCUP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type XenditConfig struct {
	APIKey        string `envconfig:"SYNCUP_XENDIT_API_KEY"`
	CallbackToken string `envconfig:"SYNCUP_XENDIT_CALLBACK_TOKEN"`
	Currency      string `envconfig:"SYNCUP_XENDIT_CURRENCY" default:"PHP"`
}

type ResendConfig struct {
	APIKey      string `envconfig:"SYNCUP_RESEND_API_KEY"`
	DefaultFrom string `envconfig:"SYNCUP_RESEND_FROM_EMAIL" default:"onboarding@resend.dev"`
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
