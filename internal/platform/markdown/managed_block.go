package markdown

import "strings"

// Block is a region of a note the exporter rewrites on every export. The
// reader's own text around it is left alone.
type Block string

func (b Block) Start() string { return "<!-- atheneum:" + string(b) + ":start -->" }
func (b Block) End() string   { return "<!-- atheneum:" + string(b) + ":end -->" }

// Empty is the block with nothing generated in it yet.
func (b Block) Empty() string { return b.Start() + "\n" + b.End() }

// Replace swaps the block's content in body for generated. A body without
// the block gets it appended.
func (b Block) Replace(body, generated string) string {
	start, end := b.Start(), b.End()
	block := start + "\n" + generated + "\n" + end

	i := strings.Index(body, start)
	j := strings.Index(body, end)
	if i >= 0 && j > i {
		return body[:i] + block + body[j+len(end):]
	}

	switch {
	case strings.TrimSpace(body) == "":
		return block + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + block + "\n"
	default:
		return body + "\n\n" + block + "\n"
	}
}
