package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	letterpdf "github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/assets"
	"github.com/alnah/go-letterpdf/internal/auth"
	"github.com/alnah/go-letterpdf/internal/config"
	"github.com/alnah/go-letterpdf/internal/hints"
	"github.com/alnah/go-letterpdf/internal/logging"
	"github.com/alnah/go-letterpdf/internal/mail"
	"github.com/alnah/go-letterpdf/internal/store"
)

// Sentinel errors for CLI operations.
var (
	ErrOpenStore   = errors.New("failed to open store")
	ErrWriteOutput = errors.New("failed to write output file")
	ErrNoFixture   = errors.New("no fixture file specified")
)

// filePermissions is the mode of written letters: rw-r--r--.
const filePermissions = 0o644

// Google OAuth client credentials, read from the environment or env file.
const (
	envOAuthClientID     = "OAUTH_GOOGLE_CLIENT_ID"
	envOAuthClientSecret = "OAUTH_GOOGLE_CLIENT_SECRET"
)

// loadConfiguration resolves the effective config.
// Priority: CLI flags > env vars > config file > defaults.
func loadConfiguration(f *commonFlags, env *Environment) (*config.Config, error) {
	envFile := f.envFile
	if envFile == "" {
		envFile = os.Getenv("LETTERPDF_ENV_FILE")
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	cfg := config.DefaultConfig()
	name := f.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchedPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)

	if f.store != "" {
		cfg.Store.Path = f.store
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}

	return cfg, nil
}

// applyRenderFlags merges rendering flags into cfg.
func applyRenderFlags(f *renderFlags, cfg *config.Config) {
	if f.timeout != "" {
		cfg.Render.Timeout = f.timeout
	}
	if f.style != "" {
		cfg.Render.Style = f.style
	}
	if f.siteURL != "" {
		cfg.Render.SiteURL = f.siteURL
	}
}

// newLogger builds the process logger. Quiet mode keeps errors only.
func newLogger(cfg *config.Config, f *commonFlags, output string) (*zap.Logger, error) {
	level := cfg.Log.Level
	if f.quiet {
		level = "error"
	}
	return logging.New(logging.Options{
		Level:   level,
		Format:  cfg.Log.Format,
		Verbose: f.verbose,
		Output:  output,
	})
}

// openStore opens the configured CRM store.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.SQLite, error) {
	st, err := store.Open(ctx, cfg.Store.Path, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrOpenStore, err, hints.ForStore(cfg.Store.Path))
	}
	return st, nil
}

// mailSetup is the mailer built from config plus the OAuth token that
// backs it when the transport is gmail.
type mailSetup struct {
	mailer letterpdf.Mailer
	token  *auth.Token
	oauth  string // redirect URL
}

// persist saves the Gmail token, if any.
func (m *mailSetup) persist(logger *zap.Logger) {
	if m.token == nil {
		return
	}
	if err := m.token.Persist(); err != nil {
		logger.Warn("persisting oauth token", zap.Error(err))
	}
}

// newMailSetup builds the configured mail transport. TransportNone yields
// a nil mailer.
func newMailSetup(cfg *config.Config, logger *zap.Logger) (*mailSetup, error) {
	timeout := 30 * time.Second
	if cfg.Render.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Render.Timeout); err == nil {
			timeout = d
		}
	}

	switch strings.ToLower(cfg.Mail.Transport) {
	case "", config.TransportNone:
		return &mailSetup{}, nil
	case config.TransportSMTP:
		return &mailSetup{mailer: &mail.SMTPMailer{
			Host:     cfg.Mail.SMTP.Host,
			Port:     cfg.Mail.SMTP.Port,
			Username: cfg.Mail.SMTP.Username,
			Password: cfg.Mail.SMTP.Password,
			Timeout:  timeout,
			Logger:   logger,
		}}, nil
	case config.TransportOutbox:
		return &mailSetup{mailer: &mail.Outbox{Dir: cfg.Mail.Outbox.Dir, Logger: logger}}, nil
	case config.TransportGmail:
		return newGmailSetup(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: mail.transport %q", config.ErrInvalidValue, cfg.Mail.Transport)
	}
}

func newGmailSetup(cfg *config.Config, logger *zap.Logger) (*mailSetup, error) {
	if cfg.Mail.Gmail.EnvFile != "" {
		if err := godotenv.Load(cfg.Mail.Gmail.EnvFile); err != nil {
			return nil, fmt.Errorf("loading gmail env file: %w", err)
		}
	}

	redirect := cfg.Server.OAuthURL
	if redirect == "" {
		redirect = fmt.Sprintf("http://%s/oauth", cfg.Server.Addr)
	}

	oauthCfg, err := auth.NewConfig(os.Getenv(envOAuthClientID), os.Getenv(envOAuthClientSecret), redirect)
	if err != nil {
		return nil, fmt.Errorf("gmail transport: %w (set %s and %s)", err, envOAuthClientID, envOAuthClientSecret)
	}
	tok, err := auth.NewToken(oauthCfg, cfg.Mail.Gmail.TokenFile, logger)
	if err != nil {
		return nil, fmt.Errorf("gmail transport: %w", err)
	}
	return &mailSetup{
		mailer: mail.NewGmailMailer(tok, logger),
		token:  tok,
		oauth:  redirect,
	}, nil
}

// creatorOptions maps config onto Creator options.
func creatorOptions(cfg *config.Config, logger *zap.Logger, mailer letterpdf.Mailer, env *Environment) []letterpdf.Option {
	opts := []letterpdf.Option{
		letterpdf.WithLogger(logger),
		letterpdf.WithClock(env.Now),
		letterpdf.WithTemplateEngine(cfg.Letter.TemplateEngine),
	}
	if mailer != nil {
		opts = append(opts, letterpdf.WithMailer(mailer))
	}
	if cfg.Render.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Render.Timeout); err == nil && d > 0 {
			opts = append(opts, letterpdf.WithTimeout(d))
		}
	}
	if cfg.Render.Style != "" {
		opts = append(opts, letterpdf.WithStyle(cfg.Render.Style))
	}
	if cfg.Render.AssetPath != "" {
		opts = append(opts, letterpdf.WithAssetPath(cfg.Render.AssetPath))
	}
	if cfg.Render.SiteURL != "" {
		opts = append(opts, letterpdf.WithSiteURL(cfg.Render.SiteURL))
	}
	if cfg.Letter.DateFormat != "" {
		opts = append(opts, letterpdf.WithDateFormat(cfg.Letter.DateFormat))
	}
	if cfg.Letter.SourceContactID > 0 {
		opts = append(opts, letterpdf.WithSourceContactID(cfg.Letter.SourceContactID))
	}
	if len(cfg.Letter.Components) > 0 {
		opts = append(opts, letterpdf.WithComponents(cfg.Letter.Components))
	}
	return opts
}

// withHint appends an actionable hint for well-known failures.
func withHint(err error, cfg *config.Config) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, letterpdf.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	case errors.Is(err, letterpdf.ErrNoMailer):
		return fmt.Errorf("%w%s", err, hints.ForMailTransport())
	case errors.Is(err, auth.ErrTokenNotSet):
		return fmt.Errorf("%w%s", err, hints.ForGmailAuth(cfg.Server.Addr))
	case errors.Is(err, letterpdf.ErrStyleNotFound):
		return fmt.Errorf("%w%s", err, hints.ForStyleNotFound(availableStyles(cfg.Render.AssetPath)))
	case errors.Is(err, letterpdf.ErrTemplateNotFound),
		errors.Is(err, letterpdf.ErrContactNotFound):
		return fmt.Errorf("%w%s", err, hints.ForStore(cfg.Store.Path))
	default:
		return err
	}
}

// availableStyles lists built-in styles plus those under assetPath.
func availableStyles(assetPath string) []string {
	if resolver, err := assets.NewAssetResolver(assetPath); err == nil {
		return resolver.Styles()
	}
	return assets.ListStyles()
}
