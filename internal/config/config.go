package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/orkendeu/bg-journal/internal/platform/bg"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	BGURL          string        `mapstructure:"BG_URL"`
	BGUsername     string        `mapstructure:"BG_USERNAME"`
	BGPassword     string        `mapstructure:"BG_PASSWORD"`
	BGServiceID    string        `mapstructure:"BG_SERVICE_ID"`
	BGTimeout      time.Duration `mapstructure:"BG_TIMEOUT"`
	BGRetryMax     int           `mapstructure:"BG_RETRY_MAX"`
	HospitalName   string        `mapstructure:"HOSPITAL_NAME"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

var keys = []string{
	"PORT",
	"ENV",
	"BG_URL",
	"BG_USERNAME",
	"BG_PASSWORD",
	"BG_SERVICE_ID",
	"BG_TIMEOUT",
	"BG_RETRY_MAX",
	"HOSPITAL_NAME",
	"CORS_ORIGINS",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"REQUEST_TIMEOUT",
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. Variables that are already set keep their value.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("BG_URL", "http://127.0.0.1:8010/")
	v.SetDefault("BG_SERVICE_ID", bg.DefaultServiceID)
	v.SetDefault("BG_TIMEOUT", "30s")
	v.SetDefault("BG_RETRY_MAX", 0)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("REQUEST_TIMEOUT", "60s")

	// Bind explicitly so Unmarshal sees keys without defaults.
	for _, k := range keys {
		v.BindEnv(k)
	}

	// .env in the working directory is optional.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	u, err := url.Parse(c.BGURL)
	if err != nil {
		return fmt.Errorf("BG_URL is not a valid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BG_URL must be an absolute http(s) URL, got %q", c.BGURL)
	}
	if c.BGTimeout <= 0 {
		return fmt.Errorf("BG_TIMEOUT must be positive, got %s", c.BGTimeout)
	}
	if c.BGRetryMax < 0 {
		return fmt.Errorf("BG_RETRY_MAX must not be negative, got %d", c.BGRetryMax)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS)
	}
	return nil
}

// BG returns the bureau client settings.
func (c *Config) BG() bg.Config {
	return bg.Config{
		URL:       c.BGURL,
		Username:  c.BGUsername,
		Password:  c.BGPassword,
		ServiceID: c.BGServiceID,
		Timeout:   c.BGTimeout,
		RetryMax:  c.BGRetryMax,
	}
}
