package pipeline

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// imagePlaceholder is an HTML comment so it survives token replacement,
// &nbsp; compaction and template rendering untouched.
const imagePlaceholder = "<!--letterpdf:img:%d-->"

// Images holds the <img> tags removed by ProtectImages, in document order.
type Images []string

// ProtectImages replaces every <img> tag with a placeholder comment.
// Image attributes often carry braces or long data URIs that must not be
// touched by token replacement. The original tag text is kept byte for byte.
func ProtectImages(content string) (string, Images, error) {
	if !strings.Contains(strings.ToLower(content), "<img") {
		return content, nil, nil
	}

	var (
		out    strings.Builder
		images Images
	)
	out.Grow(len(content))

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return "", nil, fmt.Errorf("scanning images: %w", err)
			}
			break
		}

		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			if name, _ := z.TagName(); string(name) == "img" {
				fmt.Fprintf(&out, imagePlaceholder, len(images))
				images = append(images, raw)
				continue
			}
		}
		out.WriteString(raw)
	}

	return out.String(), images, nil
}

// Restore puts the protected tags back in place of their placeholders.
func (imgs Images) Restore(content string) string {
	if len(imgs) == 0 {
		return content
	}
	pairs := make([]string, 0, len(imgs)*2)
	for i, tag := range imgs {
		pairs = append(pairs, fmt.Sprintf(imagePlaceholder, i), tag)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}
