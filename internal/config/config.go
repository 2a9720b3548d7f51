package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
		MaxUploadMB        int64    `mapstructure:"max_upload_mb"`
	} `mapstructure:"server"`

	Database struct {
		URL      string `mapstructure:"url"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Ingest struct {
		TZOffsetMinutes     int    `mapstructure:"tz_offset_minutes"`
		DefaultOrderCompany string `mapstructure:"default_order_company"`
		DefaultRequester    string `mapstructure:"default_requester"`
		LockTTLSeconds      int    `mapstructure:"lock_ttl_seconds"`
		BatchSize           int    `mapstructure:"batch_size"`
	} `mapstructure:"ingest"`

	Archive struct {
		Enabled   bool   `mapstructure:"enabled"`
		Bucket    string `mapstructure:"bucket"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Prefix    string `mapstructure:"prefix"`
	} `mapstructure:"archive"`

	Jobs struct {
		StockAuditCron string `mapstructure:"stock_audit_cron"`
	} `mapstructure:"jobs"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// LockTTL is how long an upload may hold its resource lock.
func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Ingest.LockTTLSeconds) * time.Second
}

// DSN returns DATABASE_URL when set, otherwise a URL built from the database section.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + c.Database.SSLMode,
	}
	return u.String()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("server.max_upload_mb", 20)

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "seongji_erp")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "seongji-erp")

	v.SetDefault("ingest.tz_offset_minutes", 540)
	v.SetDefault("ingest.default_order_company", "모비스")
	v.SetDefault("ingest.default_requester", "미지정")
	v.SetDefault("ingest.lock_ttl_seconds", 120)
	v.SetDefault("ingest.batch_size", 1000)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("archive.prefix", "uploads")

	v.SetDefault("jobs.stock_audit_cron", "0 3 * * *")
	v.SetDefault("log.level", "info")
}

// Load reads .env, the optional configs/config.yaml and the environment, in increasing priority.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// The config file is optional; a present but unreadable one is an error.
	if err := v.ReadInConfig(); err != nil && fileExists(v.ConfigFileUsed()) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Ingest.TZOffsetMinutes < -720 || cfg.Ingest.TZOffsetMinutes > 840 {
		return nil, fmt.Errorf("ingest.tz_offset_minutes out of range: %d", cfg.Ingest.TZOffsetMinutes)
	}
	if cfg.Ingest.BatchSize < 1 {
		cfg.Ingest.BatchSize = 1000
	}
	if cfg.Ingest.LockTTLSeconds < 1 {
		cfg.Ingest.LockTTLSeconds = 120
	}
	return &cfg, nil
}

func configPath() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// applyEnvOverrides honours the conventional variable names deployments already set.
func applyEnvOverrides(cfg *Config) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.URL = dsn
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
}
