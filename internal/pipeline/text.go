package pipeline

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// HTMLToText renders a merged letter as readable plain text (Markdown).
// Used for the text part of letters returned to clients.
func HTMLToText(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	text, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("converting letter to text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
