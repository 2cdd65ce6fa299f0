// Package markdown reads and writes the notes files the library exports:
// YAML front matter followed by a body with generated regions.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const separator = "---\n"

// SplitFrontmatter decodes the front matter of content into meta and
// returns the body after it. found is false when content has none, in
// which case the whole content is the body.
func SplitFrontmatter(content string, meta any) (body string, found bool, err error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, separator) {
		return content, false, nil
	}
	rest := strings.TrimPrefix(content, separator)
	raw, body, ok := strings.Cut(rest, "\n"+separator)
	if !ok {
		return "", false, fmt.Errorf("invalid frontmatter: missing closing separator")
	}
	if err := yaml.Unmarshal([]byte(raw), meta); err != nil {
		return "", false, fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return strings.TrimPrefix(body, "\n"), true, nil
}

// RenderFrontmatter writes meta as YAML front matter above body, with one
// blank line between them.
func RenderFrontmatter(meta any, body string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(separator)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	buf.WriteString(separator)
	buf.WriteString("\n")
	buf.WriteString(strings.TrimLeft(body, "\n"))
	return buf.String(), nil
}
