package letterpdf

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-letterpdf/internal/assets"
	"github.com/alnah/go-letterpdf/internal/crm"
	"github.com/alnah/go-letterpdf/internal/dateutil"
	"github.com/alnah/go-letterpdf/internal/fileutil"
	mailer "github.com/alnah/go-letterpdf/internal/mail"
	"github.com/alnah/go-letterpdf/internal/pipeline"
	"github.com/alnah/go-letterpdf/internal/store"
	"github.com/alnah/go-letterpdf/internal/token"
)

// Store is the CRM data Create reads and writes.
type Store interface {
	Domain(ctx context.Context) (*Domain, error)
	Template(ctx context.Context, id int64) (*MessageTemplate, error)
	PDFFormat(ctx context.Context, id int64) (*PDFFormat, error)
	Contacts(ctx context.Context, ids []int64, fields []string) ([]*Contact, error)
	CreateActivity(ctx context.Context, a *Activity) (int64, error)
}

var _ Store = (*store.SQLite)(nil)

// returnProperties are always loaded for each contact.
var returnProperties = []string{
	"sort_name", "display_name", "email", "address", "do_not_mail", "is_deceased", "on_hold",
}

const (
	defaultFileStem = "letter"
	emailBody       = "A PDF letter has been generated."
	pdfContentType  = "application/pdf"
)

// Creator runs Pdf.Create against a CRM store.
// Create with New, call Create per request, and Close when done.
type Creator struct {
	cfg           creatorConfig
	store         Store
	mailer        Mailer
	renderer      Renderer
	ownsRenderer  bool
	assetLoader   assets.AssetLoader
	htmlConverter pipeline.HTMLConverter
	doc           *documentBuilder
	logger        *zap.Logger
	now           func() time.Time
}

// New creates a Creator reading from st.
// Returns error if asset loading or option validation fails.
func New(st Store, opts ...Option) (*Creator, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: store", ErrMissingParam)
	}

	c := &Creator{
		cfg:           creatorConfig{timeout: defaultTimeout},
		store:         st,
		assetLoader:   assets.NewEmbeddedLoader(),
		htmlConverter: pipeline.NewGoldmarkConverter(),
		logger:        zap.NewNop(),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	css, err := c.resolveStyle()
	if err != nil {
		return nil, err
	}

	shell, err := c.assetLoader.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading document template: %w", err)
	}

	c.doc, err = newDocumentBuilder(shell, css, c.cfg.extraCSS, c.cfg.siteURL)
	if err != nil {
		return nil, err
	}

	if c.cfg.dateFormat != "" {
		if _, err := dateutil.ParseDateFormat(c.cfg.dateFormat); err != nil {
			return nil, fmt.Errorf("date format: %w", err)
		}
	}
	c.cfg.hooks = append([]Provider{token.DateProvider{Now: c.now, Format: c.cfg.dateFormat}}, c.cfg.hooks...)

	if c.renderer == nil {
		c.renderer = NewChromeRenderer(c.cfg.timeout, c.logger.Named("renderer"))
		c.ownsRenderer = true
	}

	return c, nil
}

// resolveStyle turns the style input (name, path, or CSS) into CSS.
func (c *Creator) resolveStyle() (string, error) {
	input := c.cfg.styleInput
	if input == "" {
		input = assets.DefaultStyleName
	}

	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("loading style file %q: %w", input, err)
		}
		return string(content), nil
	}

	if fileutil.IsCSS(input) {
		return input, nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		if errors.Is(err, assets.ErrStyleNotFound) {
			return "", fmt.Errorf("%w: %q", ErrStyleNotFound, input)
		}
		return "", fmt.Errorf("loading style %q: %w", input, err)
	}
	return css, nil
}

// Close releases the renderer created by New. Renderers passed with
// WithRenderer are owned by the caller.
func (c *Creator) Close() error {
	if c.ownsRenderer && c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

// Create merges the template for every requested contact, records one
// activity per letter, and delivers the result according to p.Output.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Creator) Create(ctx context.Context, p CreateParams) (result *CreateResult, err error) {
	var recorded []int64
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
		if err != nil && len(recorded) > 0 {
			c.logger.Warn("request failed after recording activities",
				zap.Int64s("activity_ids", recorded), zap.Error(err))
		}
	}()

	req, err := c.validate(p)
	if err != nil {
		return nil, err
	}

	domain, err := c.store.Domain(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading domain: %w", err)
	}

	tmpl, err := c.store.Template(ctx, p.TemplateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w with ID: %d", ErrTemplateNotFound, p.TemplateID)
		}
		return nil, err
	}

	layout, err := c.pageLayout(ctx, tmpl, p.PDFFormatID)
	if err != nil {
		return nil, err
	}

	body, err := c.templateBody(ctx, tmpl)
	if err != nil {
		return nil, err
	}

	// Image tags are kept out of token replacement and compaction.
	formatted, images, err := pipeline.ProtectImages(body)
	if err != nil {
		return nil, fmt.Errorf("protecting images: %w", err)
	}
	formatted = pipeline.CompactLeadingSpaces(formatted)

	tokens := token.Extract(formatted)
	contacts, err := c.loadContacts(ctx, req.ids, tokens)
	if err != nil {
		return nil, err
	}

	engine := &token.Engine{
		Components: append(append([]Provider{}, c.cfg.components...), letterProvider(tmpl)),
		Hooks:      c.cfg.hooks,
		Templates:  c.cfg.templateEngine,
	}

	result = &CreateResult{}
	for _, contact := range contacts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if suppressed, reason := contact.Suppressed(); suppressed {
			if len(contacts) == 1 {
				return nil, fmt.Errorf("%w for: %s", ErrSuppressed, contact.DisplayName)
			}
			c.logger.Info("contact suppressed",
				zap.Int64("contact_id", contact.ID), zap.String("reason", reason))
			result.Skipped = append(result.Skipped, Skip{
				ContactID:   contact.ID,
				DisplayName: contact.DisplayName,
				Reason:      reason,
			})
			continue
		}

		letter, activityID, err := c.mergeLetter(ctx, engine, formatted, tokens, images, domain, tmpl, contact, p.SourceContactID)
		if err != nil {
			return nil, err
		}
		recorded = append(recorded, activityID)
		result.Letters = append(result.Letters, letter)
		result.ActivityIDs = append(result.ActivityIDs, activityID)
	}

	if len(result.Letters) == 0 {
		return nil, ErrNoLetters
	}

	result.FileName = fileName(tmpl.Title)
	c.logger.Info("letters merged",
		zap.Int64("template_id", tmpl.ID),
		zap.Int("letters", len(result.Letters)),
		zap.Int("skipped", len(result.Skipped)),
		zap.String("output", string(req.output)))

	if req.output == OutputHTML {
		return result, nil
	}

	if err := c.render(ctx, tmpl.Title, layout, result); err != nil {
		return nil, err
	}

	if req.output == OutputPDF {
		return result, nil
	}

	if err := c.send(ctx, domain, tmpl, req.toEmail, result); err != nil {
		return nil, err
	}
	return result, nil
}

// createRequest holds validated parameters.
type createRequest struct {
	ids     []int64
	output  OutputMode
	toEmail string // bare address, set in email mode
}

// validate checks parameters before any store access.
//
// This is a TRUST BOUNDARY: the CLI, HTTP API and MCP tool all pass their
// raw parameters here.
func (c *Creator) validate(p CreateParams) (*createRequest, error) {
	ids, err := ParseContactIDs(p.ContactIDs)
	if err != nil {
		return nil, err
	}
	if p.TemplateID <= 0 {
		return nil, fmt.Errorf("%w: template_id", ErrMissingParam)
	}
	output, err := ParseOutputMode(string(p.Output))
	if err != nil {
		return nil, err
	}
	req := &createRequest{ids: ids, output: output}
	if output == OutputEmail {
		if strings.TrimSpace(p.ToEmail) == "" {
			return nil, fmt.Errorf("%w: to_email", ErrMissingParam)
		}
		addr, err := mail.ParseAddress(p.ToEmail)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, p.ToEmail)
		}
		if c.mailer == nil {
			return nil, ErrNoMailer
		}
		req.toEmail = addr.Address
	}
	return req, nil
}

// loadContacts fetches the contacts with the fields named by tokens. Custom
// fields referenced only from greeting texts are found after a first load,
// so those contacts are read again with the extra fields.
func (c *Creator) loadContacts(ctx context.Context, ids []int64, tokens token.Set) ([]*Contact, error) {
	fields := append(append([]string{}, returnProperties...), tokens.Names(token.CategoryContact)...)

	contacts, err := c.fetchContacts(ctx, ids, fields)
	if err != nil {
		return nil, err
	}

	extra := greetingFields(tokens, contacts, fields)
	if len(extra) == 0 {
		return contacts, nil
	}
	c.logger.Debug("reloading contacts for greeting fields", zap.Strings("fields", extra))
	return c.fetchContacts(ctx, ids, append(fields, extra...))
}

func (c *Creator) fetchContacts(ctx context.Context, ids []int64, fields []string) ([]*Contact, error) {
	contacts, err := c.store.Contacts(ctx, ids, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrContactNotFound, err)
		}
		return nil, err
	}
	return contacts, nil
}

// greetingFields returns the custom contact fields named by the greeting
// texts the template uses and missing from loaded.
func greetingFields(tokens token.Set, contacts []*Contact, loaded []string) []string {
	seen := make(map[string]bool, len(loaded))
	for _, f := range loaded {
		seen[f] = true
	}

	var extra []string
	for _, greeting := range tokens.Names(token.CategoryContact) {
		if !token.IsGreeting(greeting) {
			continue
		}
		for _, contact := range contacts {
			text, _ := contact.Field(greeting)
			for _, name := range token.Extract(text).Names(token.CategoryContact) {
				if seen[name] || crm.IsCoreField(name) {
					continue
				}
				seen[name] = true
				extra = append(extra, name)
			}
		}
	}
	return extra
}

// pageLayout resolves the PDF format: the parameter wins over the
// template's format, and id 0 is the default format.
func (c *Creator) pageLayout(ctx context.Context, tmpl *MessageTemplate, override *int64) (*PageLayout, error) {
	id := tmpl.PDFFormatID
	if override != nil {
		id = *override
	}

	format := crm.DefaultPDFFormat()
	if id != 0 {
		var err error
		format, err = c.store.PDFFormat(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w with ID: %d", ErrPDFFormatNotFound, id)
			}
			return nil, err
		}
	}

	return NewPageLayout(format)
}

// templateBody returns the template HTML, converting the text body from
// Markdown when the HTML body is empty.
func (c *Creator) templateBody(ctx context.Context, tmpl *MessageTemplate) (string, error) {
	if strings.TrimSpace(tmpl.HTML) != "" {
		return tmpl.HTML, nil
	}
	if strings.TrimSpace(tmpl.Text) == "" {
		return "", fmt.Errorf("%w: template %d", ErrEmptyTemplate, tmpl.ID)
	}
	html, err := c.htmlConverter.ToHTML(ctx, tmpl.Text)
	if err != nil {
		return "", fmt.Errorf("converting template text: %w", err)
	}
	return html, nil
}

// mergeLetter replaces the tokens for one contact and records the activity.
func (c *Creator) mergeLetter(
	ctx context.Context,
	engine *token.Engine,
	formatted string,
	tokens token.Set,
	images pipeline.Images,
	domain *Domain,
	tmpl *MessageTemplate,
	contact *Contact,
	sourceID int64,
) (Letter, int64, error) {
	merged, err := engine.Merge(formatted, tokens, domain, contact)
	if err != nil {
		return Letter{}, 0, fmt.Errorf("merging letter for contact %d: %w", contact.ID, err)
	}
	merged = images.Restore(merged)

	if sourceID == 0 {
		sourceID = c.cfg.sourceContactID
	}
	if sourceID == 0 {
		sourceID = contact.ID
	}

	subject := tmpl.Subject
	if subject == "" {
		subject = tmpl.Title
	}

	activityID, err := c.store.CreateActivity(ctx, &Activity{
		TypeName:         crm.ActivityPrintPDFLetter,
		SourceContactID:  sourceID,
		TargetContactIDs: []int64{contact.ID},
		Subject:          subject,
		Details:          merged,
		DateTime:         c.now(),
	})
	if err != nil {
		return Letter{}, 0, fmt.Errorf("recording activity for contact %d: %w", contact.ID, err)
	}

	text, err := pipeline.HTMLToText(merged)
	if err != nil {
		return Letter{}, 0, err
	}

	c.logger.Debug("letter merged",
		zap.Int64("contact_id", contact.ID), zap.Int64("activity_id", activityID))

	return Letter{
		ContactID:   contact.ID,
		DisplayName: contact.DisplayName,
		HTML:        merged,
		Text:        text,
	}, activityID, nil
}

// render assembles all letters into one document and prints it.
func (c *Creator) render(ctx context.Context, title string, layout *PageLayout, result *CreateResult) error {
	doc, err := c.doc.Build(ctx, title, result.Letters)
	if err != nil {
		return err
	}

	start := c.now()
	pdf, err := c.renderer.Render(ctx, doc, layout)
	if err != nil {
		return fmt.Errorf("rendering letters: %w", err)
	}
	result.PDF = pdf

	pages, err := countPages(pdf)
	if err != nil {
		c.logger.Warn("page count unavailable", zap.Error(err))
	}
	result.PageCount = pages

	c.logger.Info("pdf rendered",
		zap.Int("bytes", len(pdf)), zap.Int("pages", pages), zap.Duration("took", c.now().Sub(start)))
	return nil
}

// send emails the rendered PDF from the domain address to "to".
func (c *Creator) send(ctx context.Context, domain *Domain, tmpl *MessageTemplate, to string, result *CreateResult) error {
	fromName, fromEmail := domain.NameAndEmail()
	msg := &mailer.Message{
		From:     fromEmail,
		FromName: fromName,
		To:       to,
		ToName:   domain.Name,
		Subject:  fmt.Sprintf("PDF Letter from %s - %s", domain.Name, tmpl.Title),
		Text:     emailBody,
		Date:     c.now(),
		Attachments: []mailer.Attachment{{
			FileName:    result.FileName,
			ContentType: pdfContentType,
			Data:        result.PDF,
		}},
	}

	if err := c.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w to %s: %v", ErrMailSend, to, err)
	}
	result.SentTo = to
	c.logger.Info("letter emailed", zap.String("to", to), zap.String("file", result.FileName))
	return nil
}

// letterProvider serves {letter.*} component tokens for one template.
func letterProvider(tmpl *MessageTemplate) Provider {
	return token.StaticProvider{
		Name: "letter",
		Tokens: map[string]string{
			"title":       tmpl.Title,
			"subject":     tmpl.Subject,
			"template_id": strconv.FormatInt(tmpl.ID, 10),
		},
	}
}

// fileName munges the template title into the attachment file name.
func fileName(title string) string {
	stem := pipeline.Munge(title, "_", pipeline.DefaultMungeLength)
	if strings.Trim(stem, "_") == "" {
		stem = defaultFileStem
	}
	return stem + ".pdf"
}
