package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	ArchiveNone  = "none"
	ArchiveLocal = "local"
	ArchiveS3    = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	SMS      SMSConfig
	Archive  ArchiveConfig
	Rollover RolloverConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds the TTL policy for owner-scoped cache entries.
type CacheConfig struct {
	Enabled    bool
	ListTTL    time.Duration
	ExportTTL  time.Duration
	AccountTTL time.Duration
}

type JWTConfig struct {
	Secret           string
	Issuer           string
	GuardianTokenTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SMSConfig configures the results notification gateway.
type SMSConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ArchiveConfig selects where rollover exports are archived.
type ArchiveConfig struct {
	Driver   string
	LocalDir string
	S3       S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// RolloverConfig controls background completion of interrupted rollovers.
type RolloverConfig struct {
	ResumeOnStart bool
	Retries       int
	RetryDelay    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("CACHE_ENABLED"),
		ListTTL:    parseDuration(v.GetString("CACHE_LIST_TTL"), 24*time.Hour),
		ExportTTL:  parseDuration(v.GetString("CACHE_EXPORT_TTL"), 10*time.Minute),
		AccountTTL: parseDuration(v.GetString("CACHE_ACCOUNT_TTL"), 24*time.Hour),
	}

	cfg.JWT = JWTConfig{
		Secret:           v.GetString("JWT_SECRET"),
		Issuer:           v.GetString("JWT_ISSUER"),
		GuardianTokenTTL: parseDuration(v.GetString("GUARDIAN_TOKEN_TTL"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.SMS = SMSConfig{
		Enabled: v.GetBool("SMS_ENABLED"),
		BaseURL: v.GetString("SMS_BASE_URL"),
		APIKey:  v.GetString("SMS_API_KEY"),
		Timeout: parseDuration(v.GetString("SMS_TIMEOUT"), 10*time.Second),
	}

	cfg.Archive = ArchiveConfig{
		Driver:   strings.ToLower(v.GetString("ARCHIVE_DRIVER")),
		LocalDir: v.GetString("ARCHIVE_LOCAL_DIR"),
		S3: S3Config{
			Endpoint:  v.GetString("ARCHIVE_S3_ENDPOINT"),
			Region:    v.GetString("ARCHIVE_S3_REGION"),
			Bucket:    v.GetString("ARCHIVE_S3_BUCKET"),
			AccessKey: v.GetString("ARCHIVE_S3_ACCESS_KEY"),
			SecretKey: v.GetString("ARCHIVE_S3_SECRET_KEY"),
			UseSSL:    v.GetBool("ARCHIVE_S3_USE_SSL"),
		},
	}

	retries := v.GetInt("ROLLOVER_RESUME_RETRIES")
	if retries <= 0 {
		retries = 3
	}
	cfg.Rollover = RolloverConfig{
		ResumeOnStart: v.GetBool("ROLLOVER_RESUME_ON_START"),
		Retries:       retries,
		RetryDelay:    parseDuration(v.GetString("ROLLOVER_RESUME_DELAY"), 5*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "coaching_center")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_LIST_TTL", "24h")
	v.SetDefault("CACHE_EXPORT_TTL", "10m")
	v.SetDefault("CACHE_ACCOUNT_TTL", "24h")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "coaching-center-api")
	v.SetDefault("GUARDIAN_TOKEN_TTL", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SMS_ENABLED", false)
	v.SetDefault("SMS_BASE_URL", "https://api.sms.net.bd/sendsms")
	v.SetDefault("SMS_API_KEY", "")
	v.SetDefault("SMS_TIMEOUT", "10s")

	v.SetDefault("ARCHIVE_DRIVER", ArchiveNone)
	v.SetDefault("ARCHIVE_LOCAL_DIR", "./archives")
	v.SetDefault("ARCHIVE_S3_REGION", "us-east-1")
	v.SetDefault("ARCHIVE_S3_USE_SSL", true)

	v.SetDefault("ROLLOVER_RESUME_ON_START", true)
	v.SetDefault("ROLLOVER_RESUME_RETRIES", 3)
	v.SetDefault("ROLLOVER_RESUME_DELAY", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
