package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
	"github.com/developersatisa/gestor-back-facturas-pendientes/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Management DatabaseConfig   `mapstructure:"management"`
	Statistics StatisticsConfig `mapstructure:"statistics"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Teams      TeamsConfig      `mapstructure:"teams"`
	Export     ExportConfig     `mapstructure:"export"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds one store's connection settings.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LedgerConfig holds the receivables ledger store and the fixed filter
// constants. The company set is configuration by design, never inferred from
// data.
type LedgerConfig struct {
	Database      DatabaseConfig    `mapstructure:"database"`
	Companies     []string          `mapstructure:"companies"`
	CompanyNames  map[string]string `mapstructure:"company_names"`
	ExcludedTypes []string          `mapstructure:"excluded_types"`
	Collective    string            `mapstructure:"collective"`
}

// StatisticsConfig bounds the snapshot's lists.
type StatisticsConfig struct {
	TopCompanies int `mapstructure:"top_companies"`
	OverduePage  int `mapstructure:"overdue_page"`
}

// NotifierConfig holds the reminder job settings.
type NotifierConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Interval       time.Duration `mapstructure:"interval"`
	Recipient      string        `mapstructure:"recipient"`
	PortalURL      string        `mapstructure:"portal_url"`
	ChannelTimeout time.Duration `mapstructure:"channel_timeout"`
}

// SMTPConfig holds the mail channel settings.
type SMTPConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
	SenderName string `mapstructure:"sender_name"`
}

// TeamsConfig holds the optional chat channel settings. An empty webhook URL
// disables the channel.
type TeamsConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ExportConfig holds the report sink settings. Disabled deployments surface
// an explicit feature-unavailable signal instead of attempting exports.
type ExportConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("ledger.database.path", "data/ledger.db")
	viper.SetDefault("ledger.database.max_open_conns", 25)
	viper.SetDefault("ledger.database.max_idle_conns", 5)
	viper.SetDefault("ledger.database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("ledger.companies", entity.DefaultCompanies)
	viper.SetDefault("ledger.company_names", entity.DefaultCompanyNames)
	viper.SetDefault("ledger.excluded_types", entity.DefaultExcludedTypes)
	viper.SetDefault("ledger.collective", entity.DefaultCollective)

	viper.SetDefault("management.path", "data/gestion.db")
	viper.SetDefault("management.max_open_conns", 25)
	viper.SetDefault("management.max_idle_conns", 5)
	viper.SetDefault("management.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("statistics.top_companies", entity.DefaultTopCompanies)
	viper.SetDefault("statistics.overdue_page", entity.DefaultOverduePage)

	viper.SetDefault("notifier.enabled", true)
	viper.SetDefault("notifier.interval", time.Hour)
	viper.SetDefault("notifier.channel_timeout", 15*time.Second)

	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.sender_name", "Gestion de Facturas")

	viper.SetDefault("teams.timeout", 10*time.Second)

	viper.SetDefault("export.enabled", true)
	viper.SetDefault("export.output_dir", "informes")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.username", "SMTP_USERNAME")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("smtp.from", "SMTP_FROM")
	viper.BindEnv("teams.webhook_url", "TEAMS_WEBHOOK_URL")
	viper.BindEnv("notifier.recipient", "NOTIFIER_RECIPIENT")
	viper.BindEnv("notifier.portal_url", "PORTAL_URL")
}

// Validate checks that required settings are present. Failures here abort
// process startup.
func (c *Config) Validate() error {
	if c.Ledger.Database.Path == "" {
		return fmt.Errorf("ledger database path is required")
	}
	if c.Management.Path == "" {
		return fmt.Errorf("management database path is required")
	}
	if len(c.Ledger.Companies) == 0 {
		return fmt.Errorf("at least one company must be configured")
	}
	for _, company := range c.Ledger.Companies {
		if _, ok := c.Ledger.CompanyNames[company]; !ok {
			return fmt.Errorf("company %q has no configured display name", company)
		}
	}
	if c.Notifier.Enabled {
		if c.SMTP.Host == "" {
			return fmt.Errorf("smtp host is required when the notifier is enabled")
		}
		if err := utils.ValidateEmail(c.SMTP.From); err != nil {
			return fmt.Errorf("smtp from address: %w", err)
		}
		if err := utils.ValidateEmail(c.Notifier.Recipient); err != nil {
			return fmt.Errorf("notifier recipient: %w", err)
		}
	}
	return nil
}

// DefaultCriteria builds the fixed-predicate criteria from the ledger
// configuration. Every aggregation and report query starts from this value.
func (c *Config) DefaultCriteria() entity.Criteria {
	return entity.DefaultCriteria(c.Ledger.ExcludedTypes, c.Ledger.Collective, c.Ledger.Companies)
}
