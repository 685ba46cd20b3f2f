package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Desc     string
	Values   []string // enum values
	FileGlob string
	IsBool   bool
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  string // glob for positional file arguments
}

// completionMeta holds completion hints that the FlagSet cannot express.
type completionMeta struct {
	Values   []string
	FileGlob string
}

var flagCompletionMeta = map[string]completionMeta{
	"output":     {Values: []string{"email", "pdf", "html"}},
	"transport":  {Values: []string{"none", "smtp", "gmail", "outbox"}},
	"log-level":  {Values: []string{"debug", "info", "warn", "error"}},
	"log-format": {Values: []string{"json", "console"}},
	"config":     {FileGlob: "*.yaml,*.yml"},
	"style":      {FileGlob: "*.css"},
	"store":      {FileGlob: "*.db"},
	"env-file":   {FileGlob: "*.env"},
	"out":        {FileGlob: "*.pdf,*.html"},
}

// extractFlagsFromFlagSet reads flag definitions from fs, enriched with
// flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:   f.Name,
			Short:  f.Shorthand,
			Desc:   f.Usage,
			IsBool: f.Value.Type() == "bool",
		}
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			fd.Values = meta.Values
			fd.FileGlob = meta.FileGlob
		}
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry. Flags come from the same
// FlagSets the commands parse with.
func getCommands() []commandDef {
	var (
		create   createFlags
		serve    serveFlags
		imp      importFlags
		jsonOut  bool
		doctorCF commonFlags
	)
	return []commandDef{
		{Name: "create", Desc: "Merge a template into PDF letters", Flags: extractFlagsFromFlagSet(newCreateFlagSet(&create, io.Discard))},
		{Name: "serve", Desc: "Serve the HTTP API and MCP endpoint", Flags: extractFlagsFromFlagSet(newServeFlagSet(&serve, io.Discard))},
		{Name: "import", Desc: "Load CRM fixtures into the store", Flags: extractFlagsFromFlagSet(newImportFlagSet(&imp, io.Discard)), Args: "*.yaml,*.yml"},
		{Name: "doctor", Desc: "Check Chrome, store and mail setup", Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&jsonOut, &doctorCF, io.Discard))},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script"},
	}
}

// GenerateCompletion writes a completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func longFlags(c commandDef) string {
	names := make([]string, 0, len(c.Flags))
	for _, f := range c.Flags {
		names = append(names, "--"+f.Long)
		if f.Short != "" {
			names = append(names, "-"+f.Short)
		}
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for letterpdf\n")
	b.WriteString("_letterpdf_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", commandNames(cmds))
	b.WriteString("        return\n    fi\n\n")

	b.WriteString("    case \"${prev}\" in\n")
	for _, f := range enumFlags(cmds) {
		fmt.Fprintf(&b, "        --%s) COMPREPLY=($(compgen -W %q -- \"${cur}\")); return ;;\n", f.Long, strings.Join(f.Values, " "))
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"${cmd}\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		fmt.Fprintf(&b, "            if [[ \"${cur}\" == -* ]]; then\n")
		fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", longFlags(c))
		fmt.Fprintf(&b, "            else\n")
		fmt.Fprintf(&b, "                COMPREPLY=($(compgen -f -- \"${cur}\"))\n")
		fmt.Fprintf(&b, "            fi\n            ;;\n")
	}
	b.WriteString("        completion) COMPREPLY=($(compgen -W \"bash zsh fish\" -- \"${cur}\")) ;;\n")
	fmt.Fprintf(&b, "        help) COMPREPLY=($(compgen -W %q -- \"${cur}\")) ;;\n", commandNames(cmds))
	b.WriteString("    esac\n}\n")
	b.WriteString("complete -F _letterpdf_completions letterpdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef letterpdf\n\n")
	b.WriteString("_letterpdf() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n            _arguments \\\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "                '--%s[%s]%s' \\\n", f.Long, zshEscape(f.Desc), zshAction(f))
		}
		if c.Args != "" {
			fmt.Fprintf(&b, "                '*:file:_files -g \"%s\"'\n", zshGlob(c.Args))
		} else {
			b.WriteString("                '*::'\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("        completion) _values 'shell' bash zsh fish ;;\n")
	b.WriteString("    esac\n}\n\n")
	b.WriteString("compdef _letterpdf letterpdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for letterpdf\n")
	b.WriteString("function __fish_letterpdf_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_letterpdf_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c letterpdf -f -n __fish_letterpdf_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	for _, c := range cmds {
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c letterpdf -n '__fish_letterpdf_using_command %s' -l %s", c.Name, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch {
			case len(f.Values) > 0:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case f.FileGlob != "":
				line += " -r -F"
			case !f.IsBool:
				line += " -r"
			}
			line += fmt.Sprintf(" -d '%s'\n", fishEscape(f.Desc))
			b.WriteString(line)
		}
	}
	b.WriteString("complete -c letterpdf -f -n '__fish_letterpdf_using_command completion' -a 'bash zsh fish'\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// enumFlags returns each enum flag once across all commands.
func enumFlags(cmds []commandDef) []flagDef {
	seen := make(map[string]bool)
	var out []flagDef
	for _, c := range cmds {
		for _, f := range c.Flags {
			if len(f.Values) == 0 || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			out = append(out, f)
		}
	}
	return out
}

func zshAction(f flagDef) string {
	switch {
	case f.IsBool:
		return ""
	case len(f.Values) > 0:
		return fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case f.FileGlob != "":
		return fmt.Sprintf(":%s:_files -g \"%s\"", f.Long, zshGlob(f.FileGlob))
	default:
		return ":" + f.Long + ":"
	}
}

// zshGlob turns "*.yaml,*.yml" into "*.(yaml|yml)" style alternatives.
func zshGlob(glob string) string {
	parts := strings.Split(glob, ",")
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		return errors.Join(ErrUsage, err)
	}
	return nil
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: letterpdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a shell completion script.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells: bash, zsh, fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:  eval \"$(letterpdf completion bash)\"   # in ~/.bashrc")
	fmt.Fprintln(w, "  Zsh:   eval \"$(letterpdf completion zsh)\"    # in ~/.zshrc, before compinit")
	fmt.Fprintln(w, "  Fish:  letterpdf completion fish > ~/.config/fish/completions/letterpdf.fish")
}
