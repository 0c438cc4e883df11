package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

var renderer = goldmark.New()

// Render converts Markdown note content to HTML.
func Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
