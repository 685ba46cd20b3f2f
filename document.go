package letterpdf

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-letterpdf/internal/pipeline"
)

// documentData fills the document shell template.
type documentData struct {
	Title string
	CSS   template.CSS
	Body  template.HTML
}

// documentBuilder assembles merged letters into one printable document.
type documentBuilder struct {
	shell       *template.Template
	css         string
	extraCSS    string
	siteURL     string
	cssInjector pipeline.CSSInjector
}

func newDocumentBuilder(shell, css, extraCSS, siteURL string) (*documentBuilder, error) {
	tmpl, err := template.New("document").Parse(shell)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &documentBuilder{
		shell:       tmpl,
		css:         css,
		extraCSS:    extraCSS,
		siteURL:     siteURL,
		cssInjector: &pipeline.CSSInjection{},
	}, nil
}

// Build wraps each letter in a page-breaking container inside the shell.
// Relative image and link URLs are resolved against the site URL.
func (b *documentBuilder) Build(ctx context.Context, title string, letters []Letter) (string, error) {
	bodies := make([]string, len(letters))
	for i, l := range letters {
		bodies[i] = l.HTML
	}
	body, err := pipeline.ResolveRelativeURLs(pipeline.JoinLetters(bodies), b.siteURL)
	if err != nil {
		return "", fmt.Errorf("resolving letter URLs: %w", err)
	}

	var sb strings.Builder
	err = b.shell.Execute(&sb, documentData{
		Title: title,
		CSS:   template.CSS(b.css), // #nosec G203 -- style comes from trusted assets
		Body:  template.HTML(body), // #nosec G203 -- merged template HTML is trusted
	})
	if err != nil {
		return "", fmt.Errorf("rendering document template: %w", err)
	}

	return b.cssInjector.InjectCSS(ctx, sb.String(), b.extraCSS), nil
}
