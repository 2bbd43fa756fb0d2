package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v2"
)

const (
	defaultConfigPath         = "config/config.yaml"
	defaultAddress            = ":4001"
	defaultAccessTTL          = 60 * time.Minute
	defaultRefreshTTL         = 7 * 24 * time.Hour
	defaultCeilingMarkupPct   = 10.0
	defaultCompliantMarkupPct = 5.0
	defaultFarmerCacheTTL     = 60 * time.Second
	defaultUploadDir          = "./uploads"
	defaultMaxUploadBytes     = 10 << 20
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Auth struct {
		SigningKey string        `yaml:"signing_key"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"auth"`
	Pricing struct {
		CeilingMarkupPct   float64       `yaml:"ceiling_markup_pct"`
		CompliantMarkupPct float64       `yaml:"compliant_markup_pct"`
		FarmerCacheTTL     time.Duration `yaml:"farmer_cache_ttl"`
	} `yaml:"pricing"`
	Storage struct {
		Driver         string `yaml:"driver"`
		LocalDir       string `yaml:"local_dir"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
		S3             struct {
			Endpoint  string `yaml:"endpoint"`
			Region    string `yaml:"region"`
			Bucket    string `yaml:"bucket"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			PublicURL string `yaml:"public_url"`
		} `yaml:"s3"`
	} `yaml:"storage"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Load reads the YAML file at path (missing files are fine), applies
// environment overrides and defaults, and validates the result.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Address = ":" + strings.TrimPrefix(v, ":")
	}
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Auth.SigningKey, "JWT_SIGNING_KEY")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.LocalDir, "UPLOAD_DIR")
	setString(&c.Storage.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.Storage.S3.Region, "S3_REGION")
	setString(&c.Storage.S3.Bucket, "S3_BUCKET")
	setString(&c.Storage.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&c.Storage.S3.SecretKey, "S3_SECRET_KEY")
	setString(&c.Storage.S3.PublicURL, "S3_PUBLIC_URL")
	setString(&c.Firebase.CredentialsFile, "FIREBASE_CREDENTIALS_FILE")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORS.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORS.AllowedOrigins = append(c.CORS.AllowedOrigins, o)
			}
		}
	}

	if v, err := readFloatEnv("PRICING_CEILING_MARKUP_PCT"); err != nil {
		return fmt.Errorf("parse PRICING_CEILING_MARKUP_PCT: %w", err)
	} else if v != nil {
		c.Pricing.CeilingMarkupPct = *v
	}

	if v, err := readFloatEnv("PRICING_COMPLIANT_MARKUP_PCT"); err != nil {
		return fmt.Errorf("parse PRICING_COMPLIANT_MARKUP_PCT: %w", err)
	} else if v != nil {
		c.Pricing.CompliantMarkupPct = *v
	}

	if v, err := readIntEnv("FARMER_CACHE_TTL_SECONDS"); err != nil {
		return fmt.Errorf("parse FARMER_CACHE_TTL_SECONDS: %w", err)
	} else if v != nil {
		c.Pricing.FarmerCacheTTL = time.Duration(*v) * time.Second
	}

	if v, err := readIntEnv("REDIS_DB"); err != nil {
		return fmt.Errorf("parse REDIS_DB: %w", err)
	} else if v != nil {
		c.Redis.DB = *v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Auth.AccessTTL <= 0 {
		c.Auth.AccessTTL = defaultAccessTTL
	}
	if c.Auth.RefreshTTL <= 0 {
		c.Auth.RefreshTTL = defaultRefreshTTL
	}
	if c.Pricing.CeilingMarkupPct == 0 {
		c.Pricing.CeilingMarkupPct = defaultCeilingMarkupPct
	}
	if c.Pricing.CompliantMarkupPct == 0 {
		c.Pricing.CompliantMarkupPct = defaultCompliantMarkupPct
	}
	if c.Pricing.FarmerCacheTTL <= 0 {
		c.Pricing.FarmerCacheTTL = defaultFarmerCacheTTL
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = defaultUploadDir
	}
	if c.Storage.MaxUploadBytes <= 0 {
		c.Storage.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate ensures the configuration can start a server.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("config: database url is required")
	}
	if c.Auth.SigningKey == "" {
		return errors.New("config: auth signing key is required")
	}
	if c.Pricing.CeilingMarkupPct < 0 || c.Pricing.CompliantMarkupPct < 0 {
		return errors.New("config: markup percentages must not be negative")
	}
	if c.Pricing.CompliantMarkupPct > c.Pricing.CeilingMarkupPct {
		return fmt.Errorf("config: compliant markup %.2f exceeds ceiling %.2f", c.Pricing.CompliantMarkupPct, c.Pricing.CeilingMarkupPct)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("config: s3 bucket is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// MySQLDSN returns the database URL with parseTime and UTC forced on, which
// the repositories rely on when scanning DATETIME columns. Found rows are
// reported for UPDATE so an unchanged row still counts as matched.
func (c Config) MySQLDSN() (string, error) {
	dsn, err := mysql.ParseDSN(c.Database.URL)
	if err != nil {
		return "", fmt.Errorf("config: parse database url: %w", err)
	}
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.ClientFoundRows = true
	return dsn.FormatDSN(), nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func readIntEnv(key string) (*int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readFloatEnv(key string) (*float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
