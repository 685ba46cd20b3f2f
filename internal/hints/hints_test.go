package hints

import (
	"strings"
	"testing"
)

// Browser hints read the process environment and swap IsInContainer, so
// they run sequentially.
func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		container   bool
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "github actions without sandbox flag",
			env:         map[string]string{"GITHUB_ACTIONS": "true"},
			wantContain: []string{"ROD_NO_SANDBOX=1", "ROD_BROWSER_BIN"},
		},
		{
			name:        "letterpdf serve in docker",
			container:   true,
			wantContain: []string{"ROD_NO_SANDBOX=1"},
		},
		{
			name:        "docker with sandbox disabled",
			env:         map[string]string{"ROD_NO_SANDBOX": "1"},
			container:   true,
			wantContain: []string{"ROD_BROWSER_BIN"},
			wantAbsent:  []string{"ROD_NO_SANDBOX"},
		},
		{
			name:       "workstation with a pinned chromium",
			env:        map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"},
			wantAbsent: []string{"hint:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			t.Cleanup(func() { IsInContainer = orig })
			IsInContainer = func() bool { return tt.container }

			for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "ROD_NO_SANDBOX", "ROD_BROWSER_BIN"} {
				t.Setenv(k, tt.env[k])
			}

			hint := ForBrowserConnect()
			for _, want := range tt.wantContain {
				if !strings.Contains(hint, want) {
					t.Errorf("ForBrowserConnect() = %q, want %q", hint, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(hint, absent) {
					t.Errorf("ForBrowserConnect() = %q, should not contain %q", hint, absent)
				}
			}
		})
	}
}

func TestLetterHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "store",
			got:  ForStore("/var/lib/letterpdf/crm.db"),
			want: "\n  hint: check store.path (/var/lib/letterpdf/crm.db) or load records with 'letterpdf import'",
		},
		{
			name: "mail transport",
			got:  ForMailTransport(),
			want: "\n  hint: set mail.transport to smtp, gmail or outbox in the config file",
		},
		{
			name: "gmail authorization",
			got:  ForGmailAuth("127.0.0.1:8080"),
			want: "\n  hint: run 'letterpdf serve' and open http://127.0.0.1:8080/oauth?redirect=1",
		},
		{
			name: "styles listed",
			got:  ForStyleNotFound([]string{"letter", "letterhead", "plain"}),
			want: "\n  hint: available: letter, letterhead, plain",
		},
		{
			name: "no styles to list",
			got:  ForStyleNotFound(nil),
			want: "",
		},
		{
			name: "timeout",
			got:  ForTimeout(),
			want: "\n  hint: for large mailings, use --timeout flag",
		},
		{
			name: "output directory",
			got:  ForOutputDirectory(),
			want: "\n  hint: check parent directory exists and is writable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		searched []string
		want     string
	}{
		{
			name:     "suggests the user config path",
			searched: []string{"office.yaml", "/home/ada/.config/letterpdf/office.yaml"},
			want:     "\n  hint: use --config /path/to/file.yaml or create /home/ada/.config/letterpdf/office.yaml",
		},
		{
			name:     "explicit path only",
			searched: []string{"/etc/letterpdf.yaml"},
			want:     "\n  hint: use --config /path/to/file.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ForConfigNotFound(tt.searched); got != tt.want {
				t.Errorf("ForConfigNotFound() = %q, want %q", got, tt.want)
			}
		})
	}
}
