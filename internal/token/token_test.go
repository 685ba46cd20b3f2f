package token

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Set
	}{
		{
			name:    "no tokens",
			content: "<p>Hello</p>",
			want:    Set{},
		},
		{
			name:    "contact and domain",
			content: "<p>Dear {contact.first_name}, from {domain.name}</p>",
			want:    Set{"contact": {"first_name"}, "domain": {"name"}},
		},
		{
			name:    "duplicates collapse in first-seen order",
			content: "{contact.last_name} {contact.first_name} {contact.last_name}",
			want:    Set{"contact": {"last_name", "first_name"}},
		},
		{
			name:    "hyphenated names",
			content: "{event.start-date}",
			want:    Set{"event": {"start-date"}},
		},
		{
			name:    "doubled braces are skipped",
			content: "{{contact.first_name}} {contact.city}",
			want:    Set{"contact": {"city"}},
		},
		{
			name:    "malformed tokens ignored",
			content: "{contact} {.name} {contact.}",
			want:    Set{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Extract(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestSet_Has(t *testing.T) {
	t.Parallel()

	s := Extract("{contact.first_name} {date.today}")
	if !s.Has("contact", "first_name") {
		t.Error("Has(contact, first_name) = false, want true")
	}
	if s.Has("contact", "last_name") {
		t.Error("Has(contact, last_name) = true, want false")
	}
	if got := len(s.Categories()); got != 2 {
		t.Errorf("len(Categories()) = %d, want 2", got)
	}
}
