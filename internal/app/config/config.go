package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hostcompare/internal/app/dsn"

	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceHost   string
	ServicePort   int
	LogLevel      string
	LogFormat     string
	TemplatesGlob string
	// SiteURL - внешний адрес сайта для ссылок в письмах и сравнениях
	SiteURL     string
	CORSOrigins []string
	CacheTTL    time.Duration

	JWT       JWTConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	Migration MigrationConfig
}

type JWTConfig struct {
	Token         string
	ExpiresIn     time.Duration
	SigningMethod jwt.SigningMethod
	CookieSecure  bool
}

type RedisConfig struct {
	Host        string
	Password    string
	Port        int
	User        string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL - базовый адрес, по которому объекты отдаются браузеру
	PublicURL string
}

func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Timeout ограничивает всю отправку письма, от соединения до QUIT
	Timeout time.Duration
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type MigrationConfig struct {
	MySQLDSN    string
	PostgresDSN string
	BatchSize   int
	StatusFile  string
}

const (
	envRedisHost = "REDIS_HOST"
	envRedisPort = "REDIS_PORT"
	envRedisUser = "REDIS_USER"
	envRedisPass = "REDIS_PASSWORD"

	envJWTSecret    = "JWT_SECRET"
	envJWTExpiresIn = "JWT_EXPIRES_IN"

	envMinIOEndpoint  = "MINIO_ENDPOINT"
	envMinIOAccessKey = "MINIO_ACCESS_KEY"
	envMinIOSecretKey = "MINIO_SECRET_KEY"
	envMinIOBucket    = "MINIO_BUCKET"
	envMinIOUseSSL    = "MINIO_USE_SSL"
	envMinIOPublicURL = "MINIO_PUBLIC_URL"

	envSMTPHost    = "SMTP_HOST"
	envSMTPPort    = "SMTP_PORT"
	envSMTPUser    = "SMTP_USER"
	envSMTPPass    = "SMTP_PASSWORD"
	envSMTPFrom    = "SMTP_FROM"
	envSMTPTimeout = "SMTP_TIMEOUT"

	envSiteURL = "SITE_URL"

	envMySQLDSN        = "MYSQL_DSN"
	envPostgresDSN     = "POSTGRES_DSN"
	envBatchSize       = "MIGRATION_BATCH_SIZE"
	envMigrationStatus = "MIGRATION_STATUS_FILE"
)

const (
	DefaultBatchSize  = 500
	DefaultStatusFile = "migration-status.json"
)

func NewConfig() (*Config, error) {
	var err error

	configName := "config"
	_ = godotenv.Load()
	if os.Getenv("CONFIG_NAME") != "" {
		configName = os.Getenv("CONFIG_NAME")
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("toml")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")
	viper.WatchConfig()

	err = viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = viper.Unmarshal(cfg)
	if err != nil {
		return nil, err
	}

	if err = cfg.applyEnv(); err != nil {
		return nil, err
	}

	log.Info("config parsed")

	return cfg, nil
}

// applyEnv дополняет конфиг секретами и адресами из окружения.
func (cfg *Config) applyEnv() error {
	var err error

	if cfg.ServicePort == 0 {
		cfg.ServicePort = 8080
	}
	if cfg.TemplatesGlob == "" {
		cfg.TemplatesGlob = "templates/*.html"
	}
	cfg.SiteURL = strings.TrimRight(stringEnv(envSiteURL, cfg.SiteURL), "/")
	if cfg.SiteURL == "" {
		cfg.SiteURL = fmt.Sprintf("http://localhost:%d", cfg.ServicePort)
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RateLimit.RPS == 0 {
		cfg.RateLimit.RPS = 1
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 5
	}

	// JWT
	cfg.JWT.Token = os.Getenv(envJWTSecret)
	if cfg.JWT.Token == "" {
		return errors.New("JWT_SECRET must be set")
	}
	cfg.JWT.SigningMethod = jwt.SigningMethodHS256
	cfg.JWT.ExpiresIn = 24 * time.Hour
	if v := os.Getenv(envJWTExpiresIn); v != "" {
		cfg.JWT.ExpiresIn, err = time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("jwt expires in must be duration: %w", err)
		}
	}

	// Redis
	cfg.Redis.Host = os.Getenv(envRedisHost)
	cfg.Redis.Port, err = intEnv(envRedisPort, 6379)
	if err != nil {
		return fmt.Errorf("redis port must be int value: %w", err)
	}
	cfg.Redis.Password = os.Getenv(envRedisPass)
	cfg.Redis.User = os.Getenv(envRedisUser)
	cfg.Redis.DialTimeout = 10 * time.Second
	cfg.Redis.ReadTimeout = 10 * time.Second

	// MinIO
	cfg.MinIO.Endpoint = os.Getenv(envMinIOEndpoint)
	cfg.MinIO.AccessKey = os.Getenv(envMinIOAccessKey)
	cfg.MinIO.SecretKey = os.Getenv(envMinIOSecretKey)
	cfg.MinIO.Bucket = stringEnv(envMinIOBucket, "hostcompare")
	cfg.MinIO.UseSSL = os.Getenv(envMinIOUseSSL) == "true"
	cfg.MinIO.PublicURL = strings.TrimRight(os.Getenv(envMinIOPublicURL), "/")

	// SMTP
	cfg.SMTP.Host = os.Getenv(envSMTPHost)
	cfg.SMTP.Port, err = intEnv(envSMTPPort, 587)
	if err != nil {
		return fmt.Errorf("smtp port must be int value: %w", err)
	}
	cfg.SMTP.User = os.Getenv(envSMTPUser)
	cfg.SMTP.Password = os.Getenv(envSMTPPass)
	cfg.SMTP.From = stringEnv(envSMTPFrom, cfg.SMTP.User)
	cfg.SMTP.Timeout = 10 * time.Second
	if v := os.Getenv(envSMTPTimeout); v != "" {
		cfg.SMTP.Timeout, err = time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("smtp timeout must be duration: %w", err)
		}
	}

	return cfg.Migration.applyEnv()
}

func (m *MigrationConfig) applyEnv() error {
	var err error

	m.MySQLDSN = stringEnv(envMySQLDSN, m.MySQLDSN)
	m.PostgresDSN = stringEnv(envPostgresDSN, dsn.FromEnv())
	m.StatusFile = stringEnv(envMigrationStatus, m.StatusFile)
	if m.StatusFile == "" {
		m.StatusFile = DefaultStatusFile
	}

	fallback := m.BatchSize
	if fallback <= 0 {
		fallback = DefaultBatchSize
	}
	m.BatchSize, err = intEnv(envBatchSize, fallback)
	if err != nil {
		return fmt.Errorf("migration batch size must be int value: %w", err)
	}
	if m.BatchSize <= 0 {
		return fmt.Errorf("migration batch size must be positive, got %d", m.BatchSize)
	}
	return nil
}

// MigrationFromEnv собирает настройки утилиты миграции; файл env (обычно
// .env.migration) загружается поверх окружения, если он есть.
func MigrationFromEnv(envFile string) (MigrationConfig, MinIOConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return MigrationConfig{}, MinIOConfig{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var m MigrationConfig
	if err := m.applyEnv(); err != nil {
		return MigrationConfig{}, MinIOConfig{}, err
	}
	if m.MySQLDSN == "" {
		return MigrationConfig{}, MinIOConfig{}, errors.New("MYSQL_DSN must be set")
	}

	minio := MinIOConfig{
		Endpoint:  os.Getenv(envMinIOEndpoint),
		AccessKey: os.Getenv(envMinIOAccessKey),
		SecretKey: os.Getenv(envMinIOSecretKey),
		Bucket:    stringEnv(envMinIOBucket, "hostcompare"),
		UseSSL:    os.Getenv(envMinIOUseSSL) == "true",
		PublicURL: strings.TrimRight(os.Getenv(envMinIOPublicURL), "/"),
	}
	return m, minio, nil
}

// SetupLogger настраивает logrus по уровню и формату из конфига.
func (cfg *Config) SetupLogger() {
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
