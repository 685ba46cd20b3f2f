package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ResolveRelativeURLs makes relative image and link references absolute so
// they still load once the letter is rendered from a temporary file.
// If base is empty, returns the HTML unchanged.
//
// base is either a site URL ("https://crm.example.org/") or a local
// directory. With a site URL, relative and root-relative references are
// resolved against it. With a directory, relative paths become file:// URLs
// and paths escaping the directory are left alone.
func ResolveRelativeURLs(htmlContent, base string) (string, error) {
	if base == "" {
		return htmlContent, nil
	}

	var resolve func(string) (string, bool)
	if IsSiteURL(base) {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		resolve = func(ref string) (string, bool) {
			return resolveAgainstURL(baseURL, ref)
		}
	} else {
		absDir, err := filepath.Abs(base)
		if err != nil {
			return "", err
		}
		resolve = func(ref string) (string, bool) {
			return resolveAgainstDir(absDir, ref)
		}
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, resolve)

	return renderHTML(doc, isFragment)
}

// IsSiteURL reports whether base is an http(s) URL rather than a directory.
func IsSiteURL(base string) bool {
	return strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://")
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, resolve func(string) (string, bool)) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "img":
			rewriteAttr(n, "src", resolve)
		case "a":
			rewriteAttr(n, "href", resolve)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, resolve)
	}
}

func rewriteAttr(n *html.Node, attrName string, resolve func(string) (string, bool)) {
	for i, attr := range n.Attr {
		if attr.Key != attrName {
			continue
		}
		if v, ok := resolve(attr.Val); ok {
			n.Attr[i].Val = v
		}
	}
}

// hasScheme returns true for references that are already absolute or
// must never be rewritten (anchors, data URIs, mail links).
func hasScheme(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return true
	}
	u, err := url.Parse(ref)
	if err != nil {
		return true
	}
	return u.Scheme != ""
}

func resolveAgainstURL(base *url.URL, ref string) (string, bool) {
	if hasScheme(ref) {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(u).String(), true
}

func resolveAgainstDir(dir, ref string) (string, bool) {
	if hasScheme(ref) || filepath.IsAbs(ref) || strings.HasPrefix(ref, "/") {
		return "", false
	}

	absPath := filepath.Join(dir, ref)
	if !isPathUnderDir(absPath, dir) {
		return "", false
	}
	return pathToFileURL(absPath), true
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
