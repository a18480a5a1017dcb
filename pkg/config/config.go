package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "sabeho"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App         AppConfig
	Storage     StorageConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Password    PasswordConfig
	Admin       AdminConfig
	SubmitLimit SubmitRateLimitConfig
	LoginLimit  LoginRateLimitConfig
	Email       EmailConfig
	Facebook    FacebookConfig
	Cron        CronConfig
	CORS        CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SABEHO_APP_ENV" required:"true"`
	Port         string `envconfig:"SABEHO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SABEHO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SABEHO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	OrdersFile    string `envconfig:"SABEHO_ORDERS_FILE" default:"data/orders.json"`
	RateLimitFile string `envconfig:"SABEHO_RATE_LIMIT_FILE" default:"data/rate_limit.json"`
	Timezone      string `envconfig:"SABEHO_TIMEZONE" default:"America/Bogota"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SABEHO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SABEHO_REDIS_ADDR"`
	Password     string        `envconfig:"SABEHO_REDIS_PASSWORD"`
	DB           int           `envconfig:"SABEHO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SABEHO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SABEHO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SABEHO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SABEHO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SABEHO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SABEHO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SABEHO_JWT_ISSUER" default:"detoxsabeho"`
	ExpirationMinutes int    `envconfig:"SABEHO_JWT_EXPIRATION_MINUTES" default:"60"`
}

// SessionTTL returns how long an admin session stays valid without logout.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SABEHO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SABEHO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SABEHO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SABEHO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SABEHO_ARGON_KEY_LEN" default:"32"`
}

type AdminConfig struct {
	PasswordHash string `envconfig:"SABEHO_ADMIN_PASSWORD_HASH" required:"true"`
	Email        string `envconfig:"SABEHO_ADMIN_EMAIL" required:"true"`
}

type SubmitRateLimitConfig struct {
	MaxRequests int           `envconfig:"SABEHO_SUBMIT_RATE_LIMIT_MAX" default:"10"`
	Window      time.Duration `envconfig:"SABEHO_SUBMIT_RATE_LIMIT_WINDOW" default:"1h"`
}

type LoginRateLimitConfig struct {
	Window  time.Duration `envconfig:"SABEHO_LOGIN_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"SABEHO_LOGIN_RATE_LIMIT_IP_LIMIT" default:"5"`
}

type EmailConfig struct {
	ResendAPIKey string `envconfig:"SABEHO_RESEND_API_KEY"`
	FromDomain   string `envconfig:"SABEHO_EMAIL_FROM_DOMAIN" default:"detoxsabeho.com"`
	FromName     string `envconfig:"SABEHO_EMAIL_FROM_NAME" default:"Detox Sabeho"`
	MaxRetries   int    `envconfig:"SABEHO_EMAIL_MAX_RETRIES" default:"3"`
	DashboardURL string `envconfig:"SABEHO_DASHBOARD_URL" default:"https://detoxsabeho.com/admin"`
}

// FromAddress is the sender used for order confirmation mail.
func (e EmailConfig) FromAddress() string {
	return fmt.Sprintf("%s <pedidos@%s>", e.FromName, e.FromDomain)
}

// SystemAddress is the sender used for ledger backup mail.
func (e EmailConfig) SystemAddress() string {
	return fmt.Sprintf("Sistema %s <sistema@%s>", e.FromName, e.FromDomain)
}

type FacebookConfig struct {
	PixelID     string `envconfig:"SABEHO_FACEBOOK_PIXEL_ID"`
	AccessToken string `envconfig:"SABEHO_FACEBOOK_ACCESS_TOKEN"`
	APIVersion  string `envconfig:"SABEHO_FACEBOOK_API_VERSION" default:"v19.0"`
}

// Enabled reports whether server-side conversion events can be forwarded.
func (f FacebookConfig) Enabled() bool {
	return f.PixelID != "" && f.AccessToken != ""
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"SABEHO_CRON_INTERVAL" default:"24h"`
	MetricsPort string        `envconfig:"SABEHO_CRON_METRICS_PORT" default:"9090"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SABEHO_CORS_ALLOWED_ORIGINS" default:"https://detoxsabeho.com,https://www.detoxsabeho.com"`
}
