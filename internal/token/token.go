// Package token finds and replaces mail-merge tokens such as
// {contact.first_name} or {domain.name} in letter HTML.
package token

import (
	"regexp"
	"strings"
)

// Built-in token categories.
const (
	CategoryContact = "contact"
	CategoryDomain  = "domain"
)

// pattern matches {category.name}. Doubled braces are filtered by scan.
var pattern = regexp.MustCompile(`\{(\w+)\.([\w-]+)\}`)

// Set maps a token category to the names used in a message, in first-seen order.
type Set map[string][]string

// Extract returns every token referenced in content.
func Extract(content string) Set {
	set := Set{}
	scan(content, func(category, name string) (string, bool) {
		set.add(category, name)
		return "", false
	})
	return set
}

func (s Set) add(category, name string) {
	for _, n := range s[category] {
		if n == name {
			return
		}
	}
	s[category] = append(s[category], name)
}

// Names returns the names referenced for category.
func (s Set) Names(category string) []string {
	return s[category]
}

// Has reports whether {category.name} is referenced.
func (s Set) Has(category, name string) bool {
	for _, n := range s[category] {
		if n == name {
			return true
		}
	}
	return false
}

// Categories returns the referenced categories.
func (s Set) Categories() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	return out
}

// scan calls fn for every token in content and substitutes the returned
// value when fn reports true. Tokens wrapped in doubled braces ("{{a.b}}")
// belong to the template engine and are skipped.
func scan(content string, fn func(category, name string) (string, bool)) string {
	matches := pattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if (start > 0 && content[start-1] == '{') || (end < len(content) && content[end] == '}') {
			continue
		}
		category, name := content[m[2]:m[3]], content[m[4]:m[5]]
		value, ok := fn(category, name)
		if !ok {
			continue
		}
		b.WriteString(content[last:start])
		b.WriteString(value)
		last = end
	}
	b.WriteString(content[last:])
	return b.String()
}
