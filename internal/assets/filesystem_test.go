package assets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeAssetDir lays out an organization asset directory under a temp dir.
func writeAssetDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("creating %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return dir
}

func TestNewFilesystemLoader_InvalidBasePath(t *testing.T) {
	t.Parallel()

	file := filepath.Join(writeAssetDir(t, map[string]string{"letterhead.css": "p{}"}), "letterhead.css")

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"missing directory", filepath.Join(t.TempDir(), "assets")},
		{"css file instead of directory", file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewFilesystemLoader(tt.path); !errors.Is(err, ErrInvalidBasePath) {
				t.Errorf("NewFilesystemLoader(%q) error = %v, want ErrInvalidBasePath", tt.path, err)
			}
		})
	}
}

func TestFilesystemLoader_OrganizationAssets(t *testing.T) {
	t.Parallel()

	dir := writeAssetDir(t, map[string]string{
		"styles/letterhead.css":  ".letter { border-top: 4px solid green; }",
		"templates/branded.html": "<html><body><header>Friends of the Park</header>{{.Body}}</body></html>",
	})
	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	css, err := loader.LoadStyle("letterhead")
	if err != nil || css != ".letter { border-top: 4px solid green; }" {
		t.Errorf("LoadStyle(letterhead) = %q, %v", css, err)
	}

	shell, err := loader.LoadTemplate("branded")
	if err != nil || shell != "<html><body><header>Friends of the Park</header>{{.Body}}</body></html>" {
		t.Errorf("LoadTemplate(branded) = %q, %v", shell, err)
	}

	// Built-in names are not served by a custom directory.
	if _, err := loader.LoadStyle(DefaultStyleName); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(%q) error = %v, want ErrStyleNotFound", DefaultStyleName, err)
	}
	if _, err := loader.LoadTemplate(DefaultTemplateName); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(%q) error = %v, want ErrTemplateNotFound", DefaultTemplateName, err)
	}
	if _, err := loader.LoadStyle("letterhead.css"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(letterhead.css) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestFilesystemLoader_Styles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{
			name: "css files only",
			files: map[string]string{
				"styles/newsletter.css":   "p{}",
				"styles/letterhead.css":   "p{}",
				"styles/notes.txt":        "x",
				"styles/drafts/old.css":   "p{}",
				"templates/document.html": "{{.Body}}",
			},
			want: []string{"letterhead", "newsletter"},
		},
		{
			name:  "no styles directory",
			files: map[string]string{"templates/document.html": "{{.Body}}"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, err := NewFilesystemLoader(writeAssetDir(t, tt.files))
			if err != nil {
				t.Fatalf("NewFilesystemLoader() error = %v", err)
			}
			if got := loader.Styles(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Styles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := writeAssetDir(t, map[string]string{"secret.css": "leaked"})
	dir := writeAssetDir(t, map[string]string{"styles/letterhead.css": "p{}"})
	if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(dir, "styles", "shared.css")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	if _, err := loader.LoadStyle("shared"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(shared) error = %v, want ErrPathTraversal", err)
	}
}
