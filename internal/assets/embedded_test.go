package assets

import (
	"errors"
	"html/template"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func TestEmbeddedLoader_Styles(t *testing.T) {
	t.Parallel()

	got := NewEmbeddedLoader().Styles()
	want := []string{"letter", "plain"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Styles() = %v, want %v", got, want)
	}
}

// Every built-in style must separate letters onto their own pages and let
// the last letter end the document without a blank page.
func TestEmbeddedLoader_StylesBreakBetweenLetters(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()
	for _, name := range loader.Styles() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			css, err := loader.LoadStyle(name)
			if err != nil {
				t.Fatalf("LoadStyle(%q) error: %v", name, err)
			}
			for _, want := range []string{".letter {", "page-break-after: always", ".letter:last-child", "page-break-after: auto"} {
				if !strings.Contains(css, want) {
					t.Errorf("style %q missing %q", name, want)
				}
			}
		})
	}
}

func TestEmbeddedLoader_DocumentShell(t *testing.T) {
	t.Parallel()

	shell, err := NewEmbeddedLoader().LoadTemplate(DefaultTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate(%q) error: %v", DefaultTemplateName, err)
	}

	tmpl, err := template.New("shell").Parse(shell)
	if err != nil {
		t.Fatalf("document shell does not parse: %v", err)
	}

	var b strings.Builder
	err = tmpl.Execute(&b, struct {
		Title string
		CSS   template.CSS
		Body  template.HTML
	}{
		Title: "Thanks <2024>",
		CSS:   ".letter { color: black; }",
		Body:  `<div class="letter"><p>Dear Ada</p></div>`,
	})
	if err != nil {
		t.Fatalf("executing document shell: %v", err)
	}

	out := b.String()
	for _, want := range []string{
		`<meta charset="utf-8">`,
		"<title>Thanks &lt;2024&gt;</title>",
		".letter { color: black; }",
		`<div class="letter"><p>Dear Ada</p></div>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered shell missing %q:\n%s", want, out)
		}
	}
}

func TestEmbeddedLoader_UnknownAndInvalidNames(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name    string
		load    func(string) (string, error)
		asset   string
		wantErr error
	}{
		{"unknown style", loader.LoadStyle, "letterhead", ErrStyleNotFound},
		{"unknown shell", loader.LoadTemplate, "invoice", ErrTemplateNotFound},
		{"style outside the styles dir", loader.LoadStyle, "../templates/document", ErrInvalidAssetName},
		{"shell given with extension", loader.LoadTemplate, "document.html", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tt.load(tt.asset); !errors.Is(err, tt.wantErr) {
				t.Errorf("load(%q) error = %v, want %v", tt.asset, err, tt.wantErr)
			}
		})
	}
}

func TestEmbeddedLoader_StylesFiltersEntries(t *testing.T) {
	t.Parallel()

	loader := &EmbeddedLoader{fsys: fstest.MapFS{
		"styles/letterhead.css":    {Data: []byte(".letter{}")},
		"styles/board-minutes.css": {Data: []byte(".letter{}")},
		"styles/README.md":         {Data: []byte("notes")},
		"styles/print.v2.css":      {Data: []byte(".letter{}")},
		"styles/archive/old.css":   {Data: []byte(".letter{}")},
		"templates/document.html":  {Data: []byte("{{.Body}}")},
	}}

	got := loader.Styles()
	want := []string{"board-minutes", "letterhead"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Styles() = %v, want %v", got, want)
	}

	css, err := loader.LoadStyle("letterhead")
	if err != nil || css != ".letter{}" {
		t.Errorf("LoadStyle(letterhead) = %q, %v", css, err)
	}
}

func TestEmbeddedLoader_StylesWithoutDirectory(t *testing.T) {
	t.Parallel()

	loader := &EmbeddedLoader{fsys: fstest.MapFS{}}
	if got := loader.Styles(); got != nil {
		t.Errorf("Styles() = %v, want nil", got)
	}
}
