package letterpdf

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-letterpdf/internal/mail"
	"github.com/alnah/go-letterpdf/internal/token"
)

// Mailer delivers the email built in email mode.
type Mailer = mail.Mailer

// Provider serves the tokens of one category.
type Provider = token.Provider

// Option configures a Creator.
type Option func(*Creator)

// creatorConfig holds internal configuration for Creator.
type creatorConfig struct {
	timeout         time.Duration
	styleInput      string
	extraCSS        string
	assetPath       string
	siteURL         string
	dateFormat      string
	sourceContactID int64
	templateEngine  bool
	components      []Provider
	hooks           []Provider
}

// WithLogger sets the structured logger. The default discards logs.
func WithLogger(l *zap.Logger) Option {
	return func(c *Creator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used for activities and dates.
func WithClock(now func() time.Time) Option {
	return func(c *Creator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTimeout sets the rendering timeout of the default renderer.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("letterpdf: WithTimeout duration must be positive")
	}
	return func(c *Creator) {
		c.cfg.timeout = d
	}
}

// WithMailer sets the transport used in email mode.
func WithMailer(m Mailer) Option {
	return func(c *Creator) {
		c.mailer = m
	}
}

// WithRenderer replaces the default headless Chrome renderer,
// typically with a RendererPool.
func WithRenderer(r Renderer) Option {
	return func(c *Creator) {
		c.renderer = r
	}
}

// WithStyle sets the letter style: a built-in name ("letter", "plain"),
// a path to a CSS file, or inline CSS.
func WithStyle(style string) Option {
	return func(c *Creator) {
		c.cfg.styleInput = style
	}
}

// WithCSS appends CSS after the style.
func WithCSS(css string) Option {
	return func(c *Creator) {
		c.cfg.extraCSS = css
	}
}

// WithAssetPath loads styles and the document shell from a directory,
// falling back to the built-in assets.
func WithAssetPath(path string) Option {
	return func(c *Creator) {
		c.cfg.assetPath = path
	}
}

// WithSiteURL resolves relative image and link URLs of letters against
// the CRM site URL (or a local directory) before rendering.
func WithSiteURL(base string) Option {
	return func(c *Creator) {
		c.cfg.siteURL = base
	}
}

// WithDateFormat sets the format of {date.today}.
func WithDateFormat(format string) Option {
	return func(c *Creator) {
		c.cfg.dateFormat = format
	}
}

// WithSourceContactID sets the default activity source contact.
func WithSourceContactID(id int64) Option {
	return func(c *Creator) {
		c.cfg.sourceContactID = id
	}
}

// WithTemplateEngine enables the {{ }} template pass after token replacement.
func WithTemplateEngine(enabled bool) Option {
	return func(c *Creator) {
		c.cfg.templateEngine = enabled
	}
}

// WithComponents registers static component tokens, keyed by category
// then token name: {"org": {"motto": "..."}} serves {org.motto}.
func WithComponents(components map[string]map[string]string) Option {
	return func(c *Creator) {
		categories := make([]string, 0, len(components))
		for category := range components {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			c.cfg.components = append(c.cfg.components, token.StaticProvider{
				Name:   category,
				Tokens: components[category],
			})
		}
	}
}

// WithHooks registers hook token providers.
func WithHooks(providers ...Provider) Option {
	return func(c *Creator) {
		c.cfg.hooks = append(c.cfg.hooks, providers...)
	}
}
