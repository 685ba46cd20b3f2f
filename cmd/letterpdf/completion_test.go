package main

// Notes:
// - GenerateCompletion: we test that scripts carry the expected markers. We do
//   not run them in the target shell.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion_SupportedShells - Shell completion script generation
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		shell        Shell
		wantContains []string
	}{
		{
			name:  "bash",
			shell: ShellBash,
			wantContains: []string{
				"_letterpdf_completions",
				"complete -F _letterpdf_completions letterpdf",
				"create",
				"--contact-id",
				`--output) COMPREPLY=($(compgen -W "email pdf html"`,
			},
		},
		{
			name:  "zsh",
			shell: ShellZsh,
			wantContains: []string{
				"#compdef letterpdf",
				"_describe 'command' commands",
				"'--template-id[",
				"--transport[",
				"(none smtp gmail outbox)",
			},
		},
		{
			name:  "fish",
			shell: ShellFish,
			wantContains: []string{
				"__fish_letterpdf_needs_command",
				"'__fish_letterpdf_using_command serve' -l http-addr",
				"-l workers -s w",
				"-x -a 'email pdf html'",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%q) error = %v", tt.shell, err)
			}
			out := buf.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(out, want) {
					t.Errorf("%s script missing %q", tt.shell, want)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	err := GenerateCompletion(&bytes.Buffer{}, Shell("tcsh"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("error = %v, want ErrUnsupportedShell", err)
	}
}

func TestGetCommands_FlagsMatchParsers(t *testing.T) {
	t.Parallel()

	want := map[string][]string{
		"create": {"contact-id", "template-id", "to-email", "pdf-format-id", "output", "out", "transport", "store", "style"},
		"serve":  {"http-addr", "oauth-url", "workers", "stdio", "log-file", "config"},
		"import": {"store", "config"},
		"doctor": {"json", "store"},
	}

	for _, c := range getCommands() {
		names, ok := want[c.Name]
		if !ok {
			continue
		}
		have := make(map[string]bool)
		for _, f := range c.Flags {
			have[f.Long] = true
		}
		for _, n := range names {
			if !have[n] {
				t.Errorf("%s: missing flag --%s", c.Name, n)
			}
		}
	}
}

func TestZshGlob(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"*.css", "*.css"},
		{"*.yaml,*.yml", "(*.yaml|*.yml)"},
	}
	for _, tt := range tests {
		if got := zshGlob(tt.in); got != tt.want {
			t.Errorf("zshGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &stderr}

	if err := runCompletion(nil, env); err != nil {
		t.Fatalf("runCompletion(nil) error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Usage: letterpdf completion") {
		t.Errorf("expected usage, got %q", stdout.String())
	}

	if err := runCompletion([]string{"tcsh"}, env); !errors.Is(err, ErrUsage) {
		t.Errorf("runCompletion(tcsh) error = %v, want ErrUsage", err)
	}
}
