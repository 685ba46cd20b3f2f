package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	letterpdf "github.com/alnah/go-letterpdf"
)

func TestBuildCreateParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flags      createFlags
		wantOutput letterpdf.OutputMode
		wantFormat *int64
		wantErr    error
	}{
		{"default is email", createFlags{contactID: "1", templateID: 2}, letterpdf.OutputEmail, nil, nil},
		{"explicit pdf", createFlags{output: "PDF"}, letterpdf.OutputPDF, nil, nil},
		{"html inferred from --out", createFlags{outFile: "preview.html"}, letterpdf.OutputHTML, nil, nil},
		{"pdf inferred from --out", createFlags{outFile: "out/letters.pdf"}, letterpdf.OutputPDF, nil, nil},
		{"explicit mode wins over extension", createFlags{output: "pdf", outFile: "x.html"}, letterpdf.OutputPDF, nil, nil},
		{"format override", createFlags{output: "pdf", pdfFormatID: 4, pdfFormat: true}, letterpdf.OutputPDF, formatID(4), nil},
		{"default format override", createFlags{output: "pdf", pdfFormatID: 0, pdfFormat: true}, letterpdf.OutputPDF, formatID(0), nil},
		{"negative format", createFlags{output: "pdf", pdfFormatID: -1, pdfFormat: true}, "", nil, ErrUsage},
		{"unknown mode", createFlags{output: "fax"}, "", nil, letterpdf.ErrInvalidOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := buildCreateParams(&tt.flags)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", p.Output, tt.wantOutput)
			}
			if tt.wantFormat == nil && p.PDFFormatID != nil {
				t.Errorf("PDFFormatID = %d, want nil", *p.PDFFormatID)
			}
			if tt.wantFormat != nil && (p.PDFFormatID == nil || *p.PDFFormatID != *tt.wantFormat) {
				t.Errorf("PDFFormatID = %v, want %d", p.PDFFormatID, *tt.wantFormat)
			}
		})
	}
}

func formatID(v int64) *int64 { return &v }

func TestParseCreateFlags_PDFFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want *int64
	}{
		{"absent keeps template format", []string{"--output", "pdf"}, nil},
		{"zero selects default format", []string{"--pdf-format-id", "0"}, formatID(0)},
		{"explicit id", []string{"--pdf-format-id=3"}, formatID(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, _, err := parseCreateFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			p, err := buildCreateParams(f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && p.PDFFormatID != nil:
				t.Errorf("PDFFormatID = %d, want nil", *p.PDFFormatID)
			case tt.want != nil && (p.PDFFormatID == nil || *p.PDFFormatID != *tt.want):
				t.Errorf("PDFFormatID = %v, want %d", p.PDFFormatID, *tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name     string
		flagPath string
		want     string
	}{
		{"empty uses file name", "", "Welcome.pdf"},
		{"explicit file", "out.pdf", "out.pdf"},
		{"existing directory", dir, filepath.Join(dir, "Welcome.pdf")},
		{"trailing separator", "letters" + string(filepath.Separator), filepath.Join("letters", "Welcome.pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := outputPath(tt.flagPath, "Welcome.pdf"); got != tt.want {
				t.Errorf("outputPath(%q) = %q, want %q", tt.flagPath, got, tt.want)
			}
		})
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "letters.pdf")
	if err := writeFile(path, []byte("%PDF")); err != nil {
		t.Fatalf("writeFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "%PDF" {
		t.Errorf("read back %q, %v", data, err)
	}
}

func TestMergedHTML(t *testing.T) {
	t.Parallel()

	got := mergedHTML([]letterpdf.Letter{{HTML: "<p>A</p>"}, {HTML: "<p>B</p>"}})
	want := "<div class=\"letter\"><p>A</p></div>\n<div class=\"letter\"><p>B</p></div>\n"
	if got != want {
		t.Errorf("mergedHTML() = %q, want %q", got, want)
	}
}
