package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-letterpdf/internal/crm"
)

func testContact() *crm.Contact {
	return &crm.Contact{
		ID:            42,
		DisplayName:   "Ann Smith",
		FirstName:     "Ann",
		LastName:      "Smith & Co",
		City:          "Lyon",
		EmailGreeting: "Dear {contact.first_name}",
		Custom:        map[string]string{"member_since": "2019"},
	}
}

func testDomain() *crm.Domain {
	return &crm.Domain{Name: "Friends of the Park", Email: "info@example.org"}
}

func TestReplaceContact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"core field", "Hi {contact.first_name}", "Hi Ann"},
		{"escaped value", "{contact.last_name}", "Smith &amp; Co"},
		{"custom field", "since {contact.member_since}", "since 2019"},
		{"unknown field is emptied", "[{contact.shoe_size}]", "[]"},
		{"other categories untouched", "{domain.name}", "{domain.name}"},
		{"id alias", "{contact.contact_id}", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ReplaceContact(tt.content, testContact()); got != tt.want {
				t.Errorf("ReplaceContact(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestReplaceGreetings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		greeting string
		want     string
	}{
		{"tokens kept for the contact pass", "Dear {contact.first_name}", "Dear {contact.first_name},"},
		{"literal text escaped", "Dear Tom & Jerry", "Dear Tom &amp; Jerry,"},
		{"markup escaped around tokens", "<b>{contact.first_name}</b>", "&lt;b&gt;{contact.first_name}&lt;/b&gt;,"},
		{"empty greeting", "", ","},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := testContact()
			c.EmailGreeting = tt.greeting
			if got := ReplaceGreetings("{contact.email_greeting},", c); got != tt.want {
				t.Errorf("ReplaceGreetings() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplaceDomain(t *testing.T) {
	t.Parallel()

	got := ReplaceDomain("{domain.name} <{domain.email}> {domain.fax}", testDomain())
	want := "Friends of the Park <info@example.org> "
	if got != want {
		t.Errorf("ReplaceDomain() = %q, want %q", got, want)
	}
}

func TestReplaceProviders(t *testing.T) {
	t.Parallel()

	content := "{event.title} on {event.date}, {membership.type}"
	providers := []Provider{
		StaticProvider{Name: "event", Tokens: map[string]string{"title": "Gala"}},
	}

	got, err := ReplaceProviders(content, Extract(content), testContact(), providers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Names the provider does not return stay, as do unserved categories.
	want := "Gala on {event.date}, {membership.type}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReplaceProviders_Error(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	providers := []Provider{
		ProviderFunc{Name: "crm", Fn: func(*crm.Contact, []string) (map[string]string, error) {
			return nil, errBoom
		}},
	}

	_, err := ReplaceProviders("{crm.x}", Extract("{crm.x}"), testContact(), providers)
	if !errors.Is(err, errBoom) {
		t.Errorf("error = %v, want %v", err, errBoom)
	}
}

func TestDateProvider(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		token  string
		want   string
	}{
		{"today default format", "", "today", "2024-03-05"},
		{"today custom format", "DD/MM/YYYY", "today", "05/03/2024"},
		{"preset", "", "long", "March 5, 2024"},
		{"today with preset name", "formal", "today", "5 March 2024"},
		{"weekday preset", "", "full", "Tuesday, March 5, 2024"},
		{"unknown name omitted", "", "yesterday", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := DateProvider{Now: func() time.Time { return fixed }, Format: tt.format}
			got, err := p.Values(nil, []string{tt.token})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got[tt.token] != tt.want {
				t.Errorf("Values()[%q] = %q, want %q", tt.token, got[tt.token], tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	data := TemplateData{Contact: testContact(), Domain: testDomain()}

	t.Run("no actions passthrough", func(t *testing.T) {
		t.Parallel()
		got, err := Render("<p>{plain}</p>", data)
		if err != nil || got != "<p>{plain}</p>" {
			t.Errorf("Render() = %q, %v", got, err)
		}
	})

	t.Run("conditional", func(t *testing.T) {
		t.Parallel()
		got, err := Render(`{{if .Contact.City}}in {{.Contact.City}}{{end}}`, data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "in Lyon" {
			t.Errorf("Render() = %q, want %q", got, "in Lyon")
		}
	})

	t.Run("parse error", func(t *testing.T) {
		t.Parallel()
		_, err := Render("{{if}}", data)
		if !errors.Is(err, ErrTemplateRender) {
			t.Errorf("error = %v, want ErrTemplateRender", err)
		}
	})
}

func TestEngine_Merge(t *testing.T) {
	t.Parallel()

	content := "<p>{contact.email_greeting},</p><p>{domain.name} thanks you on {date.today}.</p>" +
		"{{if .Contact.Custom.member_since}}<p>Member since {{index .Contact.Custom \"member_since\"}}</p>{{end}}"

	e := &Engine{
		Hooks:     []Provider{DateProvider{Now: func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }}},
		Templates: true,
	}

	got, err := e.Merge(content, Extract(content), testDomain(), testContact())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"<p>Dear Ann,</p>",
		"Friends of the Park thanks you on 2024-01-02.",
		"<p>Member since 2019</p>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Merge() missing %q in:\n%s", want, got)
		}
	}
}

func TestEngine_MergeWithoutTemplates(t *testing.T) {
	t.Parallel()

	e := &Engine{}
	content := "{{.Contact.FirstName}} {contact.first_name}"
	got, err := e.Merge(content, Extract(content), testDomain(), testContact())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "{{.Contact.FirstName}} Ann" {
		t.Errorf("Merge() = %q", got)
	}
}

func TestEngine_MergeTreatsValuesAsData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		contact func(*crm.Contact)
		content string
		want    string
	}{
		{
			name:    "unbalanced braces in a value",
			contact: func(c *crm.Contact) { c.FirstName = "A{{" },
			content: "<p>Hi {contact.first_name}</p>",
			want:    "<p>Hi A&#123;&#123;</p>",
		},
		{
			name:    "action in a value is not run",
			contact: func(c *crm.Contact) { c.City = "{{.Domain.Email}}" },
			content: "<p>{contact.city}</p>{{if .Contact.City}}!{{end}}",
			want:    "<p>&#123;&#123;.Domain.Email&#125;&#125;</p>!",
		},
		{
			name:    "action in a greeting is not run",
			contact: func(c *crm.Contact) { c.EmailGreeting = "{{.Domain.Email}} {contact.first_name}" },
			content: "<p>{contact.email_greeting}</p>",
			want:    "<p>&#123;&#123;.Domain.Email&#125;&#125; Ann</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := testContact()
			tt.contact(c)
			e := &Engine{Templates: true}

			got, err := e.Merge(tt.content, Extract(tt.content), testDomain(), c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Merge() = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "info@example.org") {
				t.Errorf("Merge() leaked domain data: %q", got)
			}
		})
	}
}
