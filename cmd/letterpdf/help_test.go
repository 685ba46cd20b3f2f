package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"no args prints main usage", nil, ExitSuccess, "Usage: letterpdf <command>"},
		{"create", []string{"create"}, ExitSuccess, "--contact-id"},
		{"serve", []string{"serve"}, ExitSuccess, "/api/v3/Pdf/Create"},
		{"import", []string{"import"}, ExitSuccess, "<fixture.yaml>"},
		{"doctor", []string{"doctor"}, ExitSuccess, "--json"},
		{"completion", []string{"completion"}, ExitSuccess, "bash, zsh, fish"},
		{"version", []string{"version"}, ExitSuccess, "letterpdf version"},
		{"unknown", []string{"convert"}, ExitUsage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			env := &Environment{Stdout: &stdout, Stderr: &stderr}

			if code := runHelp(tt.args, env); code != tt.wantCode {
				t.Errorf("runHelp(%v) = %d, want %d", tt.args, code, tt.wantCode)
			}
			if tt.wantOut != "" && !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("stdout missing %q:\n%s", tt.wantOut, stdout.String())
			}
			if tt.wantCode == ExitUsage && !strings.Contains(stderr.String(), "Unknown command") {
				t.Errorf("stderr = %q, want unknown command", stderr.String())
			}
		})
	}
}

func TestParseServeFlags_RejectsArgs(t *testing.T) {
	t.Parallel()

	if _, err := parseServeFlags([]string{"extra"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for positional argument")
	}
}

func TestParseCreateFlags(t *testing.T) {
	t.Parallel()

	f, rest, err := parseCreateFlags([]string{
		"--contact-id", "7,8", "--template-id", "3", "-o", "pdf", "-O", "out/", "--style", "plain",
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseCreateFlags() error = %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("rest = %v, want none", rest)
	}
	if f.contactID != "7,8" || f.templateID != 3 || f.output != "pdf" || f.outFile != "out/" || f.render.style != "plain" {
		t.Errorf("flags = %+v", f)
	}
}
