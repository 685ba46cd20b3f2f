package pipeline

import (
	"context"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	conv := NewGoldmarkConverter()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "paragraph",
			input:        "Dear {contact.first_name},",
			wantContains: []string{"<p>Dear {contact.first_name},</p>"},
		},
		{
			name:         "hard wraps become xhtml breaks",
			input:        "line one\nline two",
			wantContains: []string{"line one<br />"},
		},
		{
			name:         "emphasis",
			input:        "**thank you**",
			wantContains: []string{"<strong>thank you</strong>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() = %q, want to contain %q", got, want)
				}
			}
			if strings.Contains(got, "<html") {
				t.Errorf("ToHTML() should return a fragment, got %q", got)
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGoldmarkConverter().ToHTML(ctx, "hello")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestHTMLToTextMarkdown(t *testing.T) {
	t.Parallel()

	got, err := HTMLToText("<p>Dear <strong>Ann</strong>,</p><p>Thanks.</p>")
	if err != nil {
		t.Fatalf("HTMLToText() error = %v", err)
	}
	if !strings.Contains(got, "Dear **Ann**,") {
		t.Errorf("HTMLToText() = %q, want markdown emphasis", got)
	}
	if !strings.Contains(got, "Thanks.") {
		t.Errorf("HTMLToText() = %q, want second paragraph", got)
	}

	empty, err := HTMLToText("   ")
	if err != nil || empty != "" {
		t.Errorf("HTMLToText(blank) = %q, %v", empty, err)
	}
}
