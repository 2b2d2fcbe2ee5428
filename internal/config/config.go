package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultSenderName is used when FROM_NAME is not provided.
const DefaultSenderName = "CapitalPro"

// Config holds all configuration for the service. It is built once at
// process start and treated as read-only afterwards.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Gmail  GmailConfig  `mapstructure:"gmail"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
	Sender SenderConfig `mapstructure:"sender"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig holds the caller authentication settings.
type AuthConfig struct {
	// APIKey is the shared secret callers must present. Empty means the
	// service is misconfigured and refuses all authenticated routes.
	APIKey string `mapstructure:"api_key"`
	// Disabled skips the API key check entirely. Operator override for
	// emergency debugging only, never set in normal deployments.
	Disabled bool `mapstructure:"disabled"`
}

// GmailConfig holds Gmail app-password credentials
type GmailConfig struct {
	User        string `mapstructure:"user"`
	AppPassword string `mapstructure:"app_password"`
}

// SMTPConfig holds generic SMTP relay configuration
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Secure selects implicit TLS (port 465 style). When false the
	// connection starts plain and upgrades via STARTTLS (port 587 style).
	Secure bool   `mapstructure:"secure"`
	User   string `mapstructure:"user"`
	Pass   string `mapstructure:"pass"`
}

// SenderConfig holds the From identity used on outgoing mail
type SenderConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
}

// FromName returns the sender display name, defaulting to the product name.
func (c *Config) FromName() string {
	if c.Sender.Name != "" {
		return c.Sender.Name
	}
	return DefaultSenderName
}

// FromAddress returns the sender address. When FROM_EMAIL is not set it
// falls back to the user identity of the selected transport.
func (c *Config) FromAddress() string {
	if c.Sender.Address != "" {
		return c.Sender.Address
	}
	if c.SMTP.Host != "" {
		return c.SMTP.User
	}
	return c.Gmail.User
}

// TransportKind reports which transport the configuration selects.
// An SMTP host always wins over Gmail credentials.
func (c *Config) TransportKind() string {
	if c.SMTP.Host != "" {
		return "smtp"
	}
	return "gmail"
}

// Summary returns presence booleans for each configured secret. Safe to
// log and to expose on the health endpoint; it never contains values.
func (c *Config) Summary() map[string]any {
	return map[string]any{
		"apiKey":       c.Auth.APIKey != "",
		"authDisabled": c.Auth.Disabled,
		"gmail":        c.Gmail.User != "" && c.Gmail.AppPassword != "",
		"smtp":         c.SMTP.Host != "",
		"fromAddress":  c.FromAddress() != "",
		"transport":    c.TransportKind(),
	}
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/capitalpro-email-service")

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Deployments use the conventional variable names, so each key is
	// bound explicitly instead of relying on a prefix.
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets pasted into env files tend to pick up stray whitespace.
	cfg.Auth.APIKey = strings.TrimSpace(cfg.Auth.APIKey)

	return &cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("auth.api_key", "EMAIL_API_KEY")
	v.BindEnv("auth.disabled", "AUTH_DISABLED")
	v.BindEnv("gmail.user", "GMAIL_USER")
	v.BindEnv("gmail.app_password", "GMAIL_APP_PASSWORD")
	v.BindEnv("smtp.host", "SMTP_HOST")
	v.BindEnv("smtp.port", "SMTP_PORT")
	v.BindEnv("smtp.secure", "SMTP_SECURE")
	v.BindEnv("smtp.user", "SMTP_USER")
	v.BindEnv("smtp.pass", "SMTP_PASS")
	v.BindEnv("sender.name", "FROM_NAME")
	v.BindEnv("sender.address", "FROM_EMAIL")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Auth defaults: fail closed, never silently open
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.disabled", false)

	// SMTP defaults
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.secure", false)

	// Sender defaults
	v.SetDefault("sender.name", "")
	v.SetDefault("sender.address", "")
}
