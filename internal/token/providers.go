package token

import (
	"strings"
	"time"

	"github.com/alnah/go-letterpdf/internal/crm"
	"github.com/alnah/go-letterpdf/internal/dateutil"
)

// CategoryDate is served by DateProvider.
const CategoryDate = "date"

// DateProvider serves {date.today} and one token per date preset
// ({date.iso}, {date.long}, ...).
type DateProvider struct {
	Now    func() time.Time
	Format string // format for {date.today}, dateutil syntax
}

// Category implements Provider.
func (p DateProvider) Category() string { return CategoryDate }

// Values implements Provider. Unknown names are omitted.
func (p DateProvider) Values(_ *crm.Contact, names []string) (map[string]string, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	t := now()

	out := make(map[string]string, len(names))
	for _, name := range names {
		var format string
		switch {
		case name == "today":
			format = p.Format
			if format == "" {
				format = dateutil.DefaultDateFormat
			}
		case dateutil.DatePresets[strings.ToLower(name)] != "":
			format = dateutil.DatePresets[strings.ToLower(name)]
		default:
			continue
		}
		v, err := dateutil.Format(format, t)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// StaticProvider serves fixed values for one category. It backs the
// component tokens configured for a letter run.
type StaticProvider struct {
	Name   string
	Tokens map[string]string
}

// Category implements Provider.
func (p StaticProvider) Category() string { return p.Name }

// Values implements Provider.
func (p StaticProvider) Values(_ *crm.Contact, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v, ok := p.Tokens[n]; ok {
			out[n] = v
		}
	}
	return out, nil
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc struct {
	Name string
	Fn   func(contact *crm.Contact, names []string) (map[string]string, error)
}

// Category implements Provider.
func (p ProviderFunc) Category() string { return p.Name }

// Values implements Provider.
func (p ProviderFunc) Values(contact *crm.Contact, names []string) (map[string]string, error) {
	return p.Fn(contact, names)
}
