package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		Env             string        `mapstructure:"env"`
		LogLevel        string        `mapstructure:"log_level"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		CORSOrigins     []string      `mapstructure:"cors_origins"`
	} `mapstructure:"server"`

	Database struct {
		Driver          string        `mapstructure:"driver"` // postgres, mysql, sqlite
		DSN             string        `mapstructure:"url"`
		MaxOpenConns    int           `mapstructure:"max_open_conns"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
		AutoMigrate     bool          `mapstructure:"auto_migrate"`
	} `mapstructure:"database"`

	Email struct {
		SMTPHost     string        `mapstructure:"smtp_host"`
		SMTPPort     int           `mapstructure:"smtp_port"`
		SMTPUsername string        `mapstructure:"smtp_user"`
		SMTPPassword string        `mapstructure:"smtp_password"`
		FromEmail    string        `mapstructure:"from_email"`
		FromName     string        `mapstructure:"from_name"`
		UseTLS       bool          `mapstructure:"use_tls"`
		Timeout      time.Duration `mapstructure:"timeout"`
		TemplatesDir string        `mapstructure:"templates_dir"`
		Enabled      bool          `mapstructure:"enabled"`
	} `mapstructure:"email"`

	// JWT verifies access tokens minted by the auth service.
	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`

	Review struct {
		TokenSecret    string        `mapstructure:"token_secret"`
		TokenTTL       time.Duration `mapstructure:"token_ttl"`
		Window         time.Duration `mapstructure:"window"`
		ClientURL      string        `mapstructure:"client_url"`
		DefaultService string        `mapstructure:"default_service"`
	} `mapstructure:"review"`

	Reminder struct {
		Enabled         bool          `mapstructure:"enabled"`
		RunInServer     bool          `mapstructure:"run_in_server"`
		Cron            string        `mapstructure:"cron"`
		Timezone        string        `mapstructure:"timezone"`
		DelayDays       int           `mapstructure:"delay_days"`
		RetryMissed     bool          `mapstructure:"retry_missed"`
		DispatchTimeout time.Duration `mapstructure:"dispatch_timeout"`
		LockTTL         time.Duration `mapstructure:"lock_ttl"`
	} `mapstructure:"reminder"`

	Redis struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"redis"`

	Hires struct {
		RequiredTier          string `mapstructure:"required_tier"`
		DefaultListLimit      int    `mapstructure:"default_list_limit"`
		DefaultCompletedLimit int    `mapstructure:"default_completed_limit"`
	} `mapstructure:"hires"`

	Tracing struct {
		Endpoint    string `mapstructure:"endpoint"`
		ServiceName string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"metrics"`
}

var AppConfig *Config

// LoadConfig reads the yaml file at path (or CONFIG_PATH, or ./config/config.yaml)
// and lets BILCA_* environment variables override any key.
// A missing file is not an error: defaults plus environment are enough to boot.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	v.SetEnvPrefix("BILCA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = &cfg
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.url is required")
	}
	if c.Review.TokenSecret == "" {
		return errors.New("review.token_secret is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Reminder.DelayDays <= 0 {
		return errors.New("reminder.delay_days must be positive")
	}
	if c.Review.Window <= 0 || c.Review.TokenTTL <= 0 {
		return errors.New("review.window and review.token_ttl must be positive")
	}
	return nil
}

// Location resolves the reminder timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reminder.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func GetConfig() *Config {
	return AppConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.env", "production")
	v.SetDefault("server.log_level", "")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_email", "no-reply@bilca.app")
	v.SetDefault("email.from_name", "Bilca")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.timeout", "10s")
	v.SetDefault("email.templates_dir", "")
	v.SetDefault("email.enabled", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("review.token_secret", "")
	v.SetDefault("review.token_ttl", "168h")
	v.SetDefault("review.window", "240h")
	v.SetDefault("review.client_url", "http://localhost:3000")
	v.SetDefault("review.default_service", "Service")

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.run_in_server", false)
	v.SetDefault("reminder.cron", "0 0 * * *")
	v.SetDefault("reminder.timezone", "UTC")
	v.SetDefault("reminder.delay_days", 5)
	v.SetDefault("reminder.retry_missed", false)
	v.SetDefault("reminder.dispatch_timeout", "15s")
	v.SetDefault("reminder.lock_ttl", "30m")

	v.SetDefault("redis.url", "")

	v.SetDefault("hires.required_tier", "featured")
	v.SetDefault("hires.default_list_limit", 3)
	v.SetDefault("hires.default_completed_limit", 6)

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "bilca-backend")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
