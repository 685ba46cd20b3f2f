package main

import (
	"errors"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	envFile   string
	store     string
	logLevel  string
	logFormat string
	quiet     bool
	verbose   bool
}

// renderFlags holds rendering flags for create and serve.
type renderFlags struct {
	timeout string
	style   string
	siteURL string
}

// createFlags holds all flags for the create command.
type createFlags struct {
	common      commonFlags
	render      renderFlags
	contactID   string
	templateID  int64
	toEmail     string
	pdfFormatID int64
	pdfFormat   bool // --pdf-format-id given, 0 included
	output      string
	outFile     string
	transport   string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common   commonFlags
	render   renderFlags
	addr     string
	oauthURL string
	workers  int
	stdio    bool
	logFile  string
}

// importFlags holds all flags for the import command.
type importFlags struct {
	common commonFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.envFile, "env-file", "", "load environment variables from a .env file")
	fs.StringVar(&f.store, "store", "", "SQLite store path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: json, console")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.siteURL, "site-url", "", "base URL for relative image links")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// newCreateFlagSet registers the create command flags on f.
func newCreateFlagSet(f *createFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("create", printCreateUsage, stderr)
	fs.StringVar(&f.contactID, "contact-id", "", "contact id or comma separated ids")
	fs.Int64Var(&f.templateID, "template-id", 0, "message template id")
	fs.StringVar(&f.toEmail, "to-email", "", "recipient of the PDF (email output)")
	fs.Int64Var(&f.pdfFormatID, "pdf-format-id", 0, "PDF format id overriding the template's (0 = default format)")
	fs.StringVarP(&f.output, "output", "o", "", "output mode: email, pdf, html")
	fs.StringVarP(&f.outFile, "out", "O", "", "file to write (pdf and html output)")
	fs.StringVar(&f.transport, "transport", "", "mail transport: none, smtp, gmail, outbox")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	return fs
}

// parseCreateFlags parses create command flags and returns positional args.
func parseCreateFlags(args []string, stderr io.Writer) (*createFlags, []string, error) {
	f := &createFlags{}
	fs := newCreateFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, errors.Join(ErrUsage, err)
	}
	f.pdfFormat = fs.Changed("pdf-format-id")
	return f, fs.Args(), nil
}

func newServeFlagSet(f *serveFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("serve", printServeUsage, stderr)
	fs.StringVar(&f.addr, "http-addr", "", "HTTP listen address")
	fs.StringVar(&f.oauthURL, "oauth-url", "", "public OAuth redirect URL")
	fs.IntVarP(&f.workers, "workers", "w", 0, "browser pool size (0 = auto)")
	fs.BoolVar(&f.stdio, "stdio", false, "also serve MCP over stdio (disables stdout logging)")
	fs.StringVar(&f.logFile, "log-file", "", "write logs to a file")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	return fs
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newServeFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, errors.Join(ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, errors.Join(ErrUsage, errors.New("serve takes no arguments"))
	}
	return f, nil
}

func newImportFlagSet(f *importFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("import", printImportUsage, stderr)
	addCommonFlags(fs, &f.common)
	return fs
}

// parseImportFlags parses import command flags and returns the fixture paths.
func parseImportFlags(args []string, stderr io.Writer) (*importFlags, []string, error) {
	f := &importFlags{}
	fs := newImportFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, errors.Join(ErrUsage, err)
	}
	return f, fs.Args(), nil
}
