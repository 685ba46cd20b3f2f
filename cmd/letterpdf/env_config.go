package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-letterpdf/internal/config"
)

// envPrefix is shared by every recognized variable.
const envPrefix = "LETTERPDF_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Files
	ConfigPath string // LETTERPDF_CONFIG: config file name or path
	EnvFile    string // LETTERPDF_ENV_FILE: .env file to load first
	StorePath  string // LETTERPDF_STORE: SQLite store path

	// Rendering
	Timeout time.Duration // LETTERPDF_TIMEOUT: PDF generation timeout
	Workers int           // LETTERPDF_WORKERS: browser pool size for serve
	Style   string        // LETTERPDF_STYLE: style name or CSS path
	SiteURL string        // LETTERPDF_SITE_URL: base for relative image URLs

	// Mail
	Transport    string // LETTERPDF_MAIL_TRANSPORT: none, smtp, gmail, outbox
	SMTPHost     string // LETTERPDF_SMTP_HOST
	SMTPPort     int    // LETTERPDF_SMTP_PORT
	SMTPUsername string // LETTERPDF_SMTP_USERNAME
	SMTPPassword string // LETTERPDF_SMTP_PASSWORD
	OutboxDir    string // LETTERPDF_OUTBOX_DIR
	GmailToken   string // LETTERPDF_GMAIL_TOKEN_FILE

	// Server and letters
	Addr            string // LETTERPDF_ADDR: HTTP listen address
	SourceContactID int64  // LETTERPDF_SOURCE_CONTACT_ID: activity source contact

	// Logging
	LogLevel  string // LETTERPDF_LOG_LEVEL
	LogFormat string // LETTERPDF_LOG_FORMAT
}

// knownEnvVars lists valid LETTERPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"LETTERPDF_CONFIG":            true,
	"LETTERPDF_ENV_FILE":          true,
	"LETTERPDF_STORE":             true,
	"LETTERPDF_TIMEOUT":           true,
	"LETTERPDF_WORKERS":           true,
	"LETTERPDF_STYLE":             true,
	"LETTERPDF_SITE_URL":          true,
	"LETTERPDF_MAIL_TRANSPORT":    true,
	"LETTERPDF_SMTP_HOST":         true,
	"LETTERPDF_SMTP_PORT":         true,
	"LETTERPDF_SMTP_USERNAME":     true,
	"LETTERPDF_SMTP_PASSWORD":     true,
	"LETTERPDF_OUTBOX_DIR":        true,
	"LETTERPDF_GMAIL_TOKEN_FILE":  true,
	"LETTERPDF_ADDR":              true,
	"LETTERPDF_SOURCE_CONTACT_ID": true,
	"LETTERPDF_LOG_LEVEL":         true,
	"LETTERPDF_LOG_FORMAT":        true,
	"LETTERPDF_CONTAINER":         true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("LETTERPDF_CONFIG"),
		EnvFile:      os.Getenv("LETTERPDF_ENV_FILE"),
		StorePath:    os.Getenv("LETTERPDF_STORE"),
		Style:        os.Getenv("LETTERPDF_STYLE"),
		SiteURL:      os.Getenv("LETTERPDF_SITE_URL"),
		Transport:    os.Getenv("LETTERPDF_MAIL_TRANSPORT"),
		SMTPHost:     os.Getenv("LETTERPDF_SMTP_HOST"),
		SMTPUsername: os.Getenv("LETTERPDF_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("LETTERPDF_SMTP_PASSWORD"),
		OutboxDir:    os.Getenv("LETTERPDF_OUTBOX_DIR"),
		GmailToken:   os.Getenv("LETTERPDF_GMAIL_TOKEN_FILE"),
		Addr:         os.Getenv("LETTERPDF_ADDR"),
		LogLevel:     os.Getenv("LETTERPDF_LOG_LEVEL"),
		LogFormat:    os.Getenv("LETTERPDF_LOG_FORMAT"),
	}

	if timeout := os.Getenv("LETTERPDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("LETTERPDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if port := os.Getenv("LETTERPDF_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.SMTPPort = p
		}
	}
	if id := os.Getenv("LETTERPDF_SOURCE_CONTACT_ID"); id != "" {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
			cfg.SourceContactID = n
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized LETTERPDF_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with the environment.
// Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.StorePath != "" {
		cfg.Store.Path = env.StorePath
	}

	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	if env.Style != "" {
		cfg.Render.Style = env.Style
	}
	if env.SiteURL != "" {
		cfg.Render.SiteURL = env.SiteURL
	}

	if env.Transport != "" {
		cfg.Mail.Transport = env.Transport
	}
	if env.SMTPHost != "" {
		cfg.Mail.SMTP.Host = env.SMTPHost
	}
	if env.SMTPPort > 0 {
		cfg.Mail.SMTP.Port = env.SMTPPort
	}
	if env.SMTPUsername != "" {
		cfg.Mail.SMTP.Username = env.SMTPUsername
	}
	if env.SMTPPassword != "" {
		cfg.Mail.SMTP.Password = env.SMTPPassword
	}
	if env.OutboxDir != "" {
		cfg.Mail.Outbox.Dir = env.OutboxDir
	}
	if env.GmailToken != "" {
		cfg.Mail.Gmail.TokenFile = env.GmailToken
	}

	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.SourceContactID > 0 {
		cfg.Letter.SourceContactID = env.SourceContactID
	}

	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
