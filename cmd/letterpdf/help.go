package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  create     Merge a template into PDF letters and email or save them")
	fmt.Fprintln(w, "  serve      Serve the HTTP API and MCP endpoint")
	fmt.Fprintln(w, "  import     Load CRM records from YAML fixtures into the store")
	fmt.Fprintln(w, "  doctor     Check Chrome, store and mail setup")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'letterpdf help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --env-file <path>     Load environment from a .env file")
	fmt.Fprintln(w, "      --store <path>        SQLite store path")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Log format: json, console")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

// printRenderUsage prints the rendering flags.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF generation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --style <s>           CSS style name or file path")
	fmt.Fprintln(w, "      --site-url <url>      Base URL for relative image links")
}

// printCreateUsage prints usage for the create command.
func printCreateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf create --contact-id <ids> --template-id <id> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Merge a message template for each contact, record a Print PDF Letter")
	fmt.Fprintln(w, "activity per contact, and email the PDF or write it to a file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Letter:")
	fmt.Fprintln(w, "      --contact-id <ids>    Contact id or comma separated ids")
	fmt.Fprintln(w, "      --template-id <id>    Message template id")
	fmt.Fprintln(w, "      --to-email <addr>     Recipient of the PDF (email output)")
	fmt.Fprintln(w, "      --pdf-format-id <id>  PDF format overriding the template's (0 = default)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <mode>       email (default), pdf, html")
	fmt.Fprintln(w, "  -O, --out <path>          File or directory for pdf/html output")
	fmt.Fprintln(w, "      --transport <s>       Mail transport: none, smtp, gmail, outbox")
	fmt.Fprintln(w)
	printRenderUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve POST /api/v3/Pdf/Create, the MCP endpoint /mcp and, for the gmail")
	fmt.Fprintln(w, "transport, the OAuth flow at /oauth.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --http-addr <addr>    Listen address (default localhost:8080)")
	fmt.Fprintln(w, "      --oauth-url <url>     Public OAuth redirect URL")
	fmt.Fprintln(w, "  -w, --workers <n>         Browser pool size (0 = auto)")
	fmt.Fprintln(w, "      --stdio               Also serve MCP over stdio")
	fmt.Fprintln(w, "      --log-file <path>     Write logs to a file")
	fmt.Fprintln(w)
	printRenderUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printImportUsage prints usage for the import command.
func printImportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf import <fixture.yaml>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Upsert domain, PDF formats, templates and contacts from YAML files.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf doctor [--json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the store and the mail transport.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Machine-readable output")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "create":
		printCreateUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "import":
		printImportUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: letterpdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: letterpdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
