package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
	Storage   StorageConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	AutoMigrate    bool
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

type DashboardConfig struct {
	RefreshInterval   time.Duration
	SalesWindowDays   int
	DailySeriesLimit  int
	TopBrands         int
	LowStockThreshold int
	Timezone          string
	Currency          string
	SalesListDays     int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()
		instance = FromViper(viper.GetViper())
	})

	return instance
}

// FromViper reads the configuration from environment variables through v,
// applying defaults for anything unset.
func FromViper(v *viper.Viper) *Config {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_AUTO_MIGRATE", false)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "devicehub")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 600)
	v.SetDefault("DASHBOARD_REFRESH_INTERVAL", "5m")
	v.SetDefault("DASHBOARD_SALES_WINDOW_DAYS", 60)
	v.SetDefault("DASHBOARD_DAILY_SERIES_LIMIT", 14)
	v.SetDefault("DASHBOARD_TOP_BRANDS", 6)
	v.SetDefault("DASHBOARD_LOW_STOCK_THRESHOLD", 3)
	v.SetDefault("DASHBOARD_TIMEZONE", "Africa/Dar_es_Salaam")
	v.SetDefault("DASHBOARD_CURRENCY", "TZS")
	v.SetDefault("SALES_LIST_DAYS", 90)
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "devicehub-reports")
	v.SetDefault("STORAGE_REGION", "")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_PREFIX", "reports")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			AutoMigrate:    v.GetBool("SERVER_AUTO_MIGRATE"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt("DB_MAX_CONNS"),
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			DashboardTTLSeconds: v.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
		},
		Dashboard: DashboardConfig{
			RefreshInterval:   v.GetDuration("DASHBOARD_REFRESH_INTERVAL"),
			SalesWindowDays:   v.GetInt("DASHBOARD_SALES_WINDOW_DAYS"),
			DailySeriesLimit:  v.GetInt("DASHBOARD_DAILY_SERIES_LIMIT"),
			TopBrands:         v.GetInt("DASHBOARD_TOP_BRANDS"),
			LowStockThreshold: v.GetInt("DASHBOARD_LOW_STOCK_THRESHOLD"),
			Timezone:          v.GetString("DASHBOARD_TIMEZONE"),
			Currency:          v.GetString("DASHBOARD_CURRENCY"),
			SalesListDays:     v.GetInt("SALES_LIST_DAYS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the
// individual DB_* settings.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Location resolves the dashboard timezone, falling back to UTC.
func (c DashboardConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", c.Timezone).Msg("unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}

// Enabled reports whether report uploads have somewhere to go.
func (c StorageConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}
