package token

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/alnah/go-letterpdf/internal/crm"
)

// ErrTemplateRender indicates the template engine pass failed.
var ErrTemplateRender = errors.New("template rendering failed")

// GreetingFields are the contact tokens whose values are themselves
// templates ("Dear {contact.first_name}").
var GreetingFields = []string{"email_greeting", "postal_greeting", "addressee"}

// Provider serves the tokens of one category. Components and hooks are
// both providers; they differ only in when the engine runs them.
type Provider interface {
	Category() string
	Values(contact *crm.Contact, names []string) (map[string]string, error)
}

// Engine replaces tokens in the order greeting, domain, contact,
// component, hook, and optionally runs the template engine pass.
type Engine struct {
	Components []Provider
	Hooks      []Provider
	// Templates enables the {{ }} template engine pass.
	Templates bool
}

// TemplateData is passed to the template engine pass.
type TemplateData struct {
	Contact *crm.Contact
	Domain  *crm.Domain
}

// Merge produces the letter for one contact.
func (e *Engine) Merge(content string, tokens Set, domain *crm.Domain, contact *crm.Contact) (string, error) {
	esc := e.escaper()
	content = replaceGreetings(content, contact, esc)
	content = replaceDomain(content, domain, esc)
	content = replaceContact(content, contact, esc)

	var err error
	if content, err = e.ReplaceComponent(content, tokens, contact); err != nil {
		return "", err
	}
	if content, err = e.ReplaceHooks(content, tokens, contact); err != nil {
		return "", err
	}

	if e.Templates {
		return Render(content, TemplateData{Contact: contact, Domain: domain})
	}
	return content, nil
}

// actionEscaper turns braces into entities so substituted values never
// open or close a template action.
var actionEscaper = strings.NewReplacer("{", "&#123;", "}", "&#125;")

func escapeActions(v string) string {
	return actionEscaper.Replace(html.EscapeString(v))
}

// escaper returns the function applied to every substituted value.
func (e *Engine) escaper() func(string) string {
	if e.Templates {
		return escapeActions
	}
	return html.EscapeString
}

// ReplaceGreetings inlines greeting templates. Their literal text is
// escaped and their own contact tokens are left for ReplaceContact.
func ReplaceGreetings(content string, contact *crm.Contact) string {
	return replaceGreetings(content, contact, html.EscapeString)
}

func replaceGreetings(content string, contact *crm.Contact, esc func(string) string) string {
	return scan(content, func(category, name string) (string, bool) {
		if category != CategoryContact || !IsGreeting(name) {
			return "", false
		}
		v, _ := contact.Field(name)
		return escapeLiterals(v, esc), true
	})
}

// escapeLiterals applies esc to the text between the tokens of v.
func escapeLiterals(v string, esc func(string) string) string {
	var b strings.Builder
	last := 0
	for _, m := range pattern.FindAllStringIndex(v, -1) {
		b.WriteString(esc(v[last:m[0]]))
		b.WriteString(v[m[0]:m[1]])
		last = m[1]
	}
	b.WriteString(esc(v[last:]))
	return b.String()
}

// IsGreeting reports whether the contact field name holds a greeting template.
func IsGreeting(name string) bool {
	for _, g := range GreetingFields {
		if g == name {
			return true
		}
	}
	return false
}

// ReplaceDomain substitutes {domain.*} tokens. Unknown names become empty.
func ReplaceDomain(content string, domain *crm.Domain) string {
	return replaceDomain(content, domain, html.EscapeString)
}

func replaceDomain(content string, domain *crm.Domain, esc func(string) string) string {
	return scan(content, func(category, name string) (string, bool) {
		if category != CategoryDomain {
			return "", false
		}
		v, _ := domain.Field(name)
		return esc(v), true
	})
}

// ReplaceContact substitutes {contact.*} tokens, custom fields included.
// Unknown names become empty.
func ReplaceContact(content string, contact *crm.Contact) string {
	return replaceContact(content, contact, html.EscapeString)
}

func replaceContact(content string, contact *crm.Contact, esc func(string) string) string {
	return scan(content, func(category, name string) (string, bool) {
		if category != CategoryContact {
			return "", false
		}
		v, _ := contact.Field(name)
		return esc(v), true
	})
}

// ReplaceComponent runs the component providers.
func (e *Engine) ReplaceComponent(content string, tokens Set, contact *crm.Contact) (string, error) {
	out, err := replaceProviders(content, tokens, contact, e.Components, e.escaper())
	if err != nil {
		return "", fmt.Errorf("component tokens: %w", err)
	}
	return out, nil
}

// ReplaceHooks runs the hook providers.
func (e *Engine) ReplaceHooks(content string, tokens Set, contact *crm.Contact) (string, error) {
	out, err := replaceProviders(content, tokens, contact, e.Hooks, e.escaper())
	if err != nil {
		return "", fmt.Errorf("hook tokens: %w", err)
	}
	return out, nil
}

// ReplaceProviders substitutes the tokens of every category served by
// providers. Categories without a provider are left untouched, as are
// names a provider does not return.
func ReplaceProviders(content string, tokens Set, contact *crm.Contact, providers []Provider) (string, error) {
	return replaceProviders(content, tokens, contact, providers, html.EscapeString)
}

func replaceProviders(content string, tokens Set, contact *crm.Contact, providers []Provider, esc func(string) string) (string, error) {
	for _, p := range providers {
		names := tokens.Names(p.Category())
		if len(names) == 0 {
			continue
		}
		values, err := p.Values(contact, names)
		if err != nil {
			return "", fmt.Errorf("%s: %w", p.Category(), err)
		}
		category := p.Category()
		content = scan(content, func(c, name string) (string, bool) {
			if c != category {
				return "", false
			}
			v, ok := values[name]
			return esc(v), ok
		})
	}
	return content, nil
}

// Render runs content through text/template with {{ }} delimiters.
// Content without actions is returned as is.
func Render(content string, data TemplateData) (string, error) {
	if !strings.Contains(content, "{{") {
		return content, nil
	}
	tmpl, err := template.New("letter").Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}
