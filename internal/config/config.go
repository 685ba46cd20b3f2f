package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-letterpdf/internal/dateutil"
	"github.com/alnah/go-letterpdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxHostLength     = 253 // RFC 1035
	MaxUserLength     = 254 // RFC 5321
	MaxAddrLength     = 100
	MaxURLLength      = 2048 // Browser limit
	MaxStyleLength    = 100
	MaxDateFmtLength  = dateutil.MaxDateFormatLength
	MaxTokenLength    = 500
	MaxWorkers        = 8
	MaxSMTPPort       = 65535
	DefaultStoreName  = "letterpdf.db"
	DefaultServerAddr = "localhost:8080"
)

// Mail transports.
const (
	TransportNone   = "none"
	TransportSMTP   = "smtp"
	TransportGmail  = "gmail"
	TransportOutbox = "outbox"
)

// configDirName is the directory under the user config dir holding named configs.
const configDirName = "letterpdf"

// Config holds all configuration for the letter service.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Render RenderConfig `yaml:"render"`
	Mail   MailConfig   `yaml:"mail"`
	Server ServerConfig `yaml:"server"`
	Letter LetterConfig `yaml:"letter"`
	Log    LogConfig    `yaml:"log"`
}

// StoreConfig locates the CRM database.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file, ":memory:" for a throwaway store
}

// RenderConfig defines PDF rendering options.
type RenderConfig struct {
	Timeout   string `yaml:"timeout"`   // Go duration, empty = library default
	Workers   int    `yaml:"workers"`   // Browser pool size, 0 = auto
	Style     string `yaml:"style"`     // Embedded style name or CSS file path
	AssetPath string `yaml:"assetPath"` // Override embedded assets
	SiteURL   string `yaml:"siteURL"`   // Base for relative image URLs
}

// MailConfig selects and configures the mail transport.
type MailConfig struct {
	Transport string       `yaml:"transport"` // none, smtp, gmail, outbox
	SMTP      SMTPConfig   `yaml:"smtp"`
	Gmail     GmailConfig  `yaml:"gmail"`
	Outbox    OutboxConfig `yaml:"outbox"`
}

// SMTPConfig configures the SMTP relay.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"` // Prefer LETTERPDF_SMTP_PASSWORD
}

// GmailConfig configures delivery through the Gmail API.
type GmailConfig struct {
	TokenFile string `yaml:"tokenFile"`
	EnvFile   string `yaml:"envFile"` // .env holding OAUTH_GOOGLE_CLIENT_ID/SECRET
}

// OutboxConfig configures the .eml outbox.
type OutboxConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig defines the HTTP and MCP transports.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	OAuthURL string `yaml:"oauthURL"` // Public OAuth redirect URL, empty = derived from addr
	Stdio    bool   `yaml:"stdio"`    // Also serve MCP over stdio
}

// LetterConfig defines token and template behavior.
type LetterConfig struct {
	DateFormat      string                       `yaml:"dateFormat"`      // {date.today} format, dateutil syntax
	TemplateEngine  bool                         `yaml:"templateEngine"`  // Run the {{ }} pass
	SourceContactID int64                        `yaml:"sourceContactId"` // Activity source, 0 = target contact
	Components      map[string]map[string]string `yaml:"components"`      // Static component tokens by category
}

// LogConfig defines logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Validate checks enums, ranges, and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("store.path", c.Store.Path, MaxPathLength); err != nil {
		return err
	}

	// Render
	if c.Render.Timeout != "" {
		d, err := time.ParseDuration(c.Render.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: render.timeout %q (must be a positive duration like 30s)", ErrInvalidValue, c.Render.Timeout)
		}
	}
	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Render.Workers)
	}
	if err := validateFieldLength("render.style", c.Render.Style, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.assetPath", c.Render.AssetPath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.siteURL", c.Render.SiteURL, MaxURLLength); err != nil {
		return err
	}

	// Mail
	switch strings.ToLower(c.Mail.Transport) {
	case "", TransportNone, TransportGmail:
	case TransportSMTP:
		if c.Mail.SMTP.Host == "" {
			return fmt.Errorf("%w: mail.smtp.host required for smtp transport", ErrInvalidValue)
		}
	case TransportOutbox:
		if c.Mail.Outbox.Dir == "" {
			return fmt.Errorf("%w: mail.outbox.dir required for outbox transport", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: mail.transport %q (must be none, smtp, gmail, or outbox)", ErrInvalidValue, c.Mail.Transport)
	}
	if err := validateFieldLength("mail.smtp.host", c.Mail.SMTP.Host, MaxHostLength); err != nil {
		return err
	}
	if err := validateFieldLength("mail.smtp.username", c.Mail.SMTP.Username, MaxUserLength); err != nil {
		return err
	}
	if c.Mail.SMTP.Port < 0 || c.Mail.SMTP.Port > MaxSMTPPort {
		return fmt.Errorf("%w: mail.smtp.port out of range: %d", ErrInvalidValue, c.Mail.SMTP.Port)
	}
	if err := validateFieldLength("mail.gmail.tokenFile", c.Mail.Gmail.TokenFile, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("mail.outbox.dir", c.Mail.Outbox.Dir, MaxPathLength); err != nil {
		return err
	}

	// Server
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.oauthURL", c.Server.OAuthURL, MaxURLLength); err != nil {
		return err
	}

	// Letter
	if c.Letter.DateFormat != "" {
		if _, err := dateutil.ParseDateFormat(c.Letter.DateFormat); err != nil {
			return fmt.Errorf("letter.dateFormat: %w", err)
		}
	}
	if c.Letter.SourceContactID < 0 {
		return fmt.Errorf("%w: letter.sourceContactId must not be negative", ErrInvalidValue)
	}
	for category, tokens := range c.Letter.Components {
		for name, value := range tokens {
			if err := validateFieldLength(fmt.Sprintf("letter.components.%s.%s", category, name), value, MaxTokenLength); err != nil {
				return err
			}
		}
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q (must be json or console)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that stores data next to the user
// config and does not send mail.
func DefaultConfig() *Config {
	return &Config{
		Store:  StoreConfig{Path: DefaultStorePath()},
		Mail:   MailConfig{Transport: TransportNone, SMTP: SMTPConfig{Port: 587}},
		Server: ServerConfig{Addr: DefaultServerAddr},
		Letter: LetterConfig{DateFormat: dateutil.DatePresets["long"]},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// DefaultStorePath returns ~/.config/letterpdf/letterpdf.db, or a file in
// the working directory when the user config dir is unknown.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultStoreName
	}
	return filepath.Join(dir, configDirName, DefaultStoreName)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/letterpdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, configDirName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// SearchedPaths lists where LoadConfig looks for a named config.
func SearchedPaths(name string) []string {
	paths := []string{name + ".yaml", name + ".yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, configDirName, name+".yaml"),
			filepath.Join(dir, configDirName, name+".yml"))
	}
	return paths
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
