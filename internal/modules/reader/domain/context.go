package domain

import (
	"strconv"
	"strings"
)

const (
	anchorMinLen = 30
	anchorMaxLen = 150
)

// BookRef is what the reader needs to know about a book.
type BookRef struct {
	ID          string
	Kind        string
	Title       string
	Author      string
	FilePath    string
	Cursor      string
	Progress    float64
	Annotations []Annotation
}

type Annotation struct {
	Range string
	Color string
}

type Anchors struct {
	Start string
	End   string
}

// ReadingContext is the AI-facing view of where the reader is.
type ReadingContext struct {
	BookID           string
	Title            string
	Author           string
	ChapterName      string
	Progress         float64
	PreviousChapters []string
	Anchors          Anchors
	SectionIndex     int
}

// ChapterAt finds the TOC entry covering section: the last entry that
// starts at or before it. ok is false when no entry does.
func ChapterAt(toc []TOCItem, section int) (int, bool) {
	found := -1
	for i, item := range toc {
		if item.Section <= section {
			found = i
		}
	}
	return found, found >= 0
}

// ChapterContext returns the chapter name and the labels of the chapters
// before it. Sections without a TOC entry fall back to a numbered name.
func ChapterContext(toc []TOCItem, section int) (string, []string) {
	idx, ok := ChapterAt(toc, section)
	if !ok {
		return sectionName(section), nil
	}
	previous := make([]string, 0, idx)
	for _, item := range toc[:idx] {
		if item.Label != "" {
			previous = append(previous, item.Label)
		}
	}
	return toc[idx].Label, previous
}

func sectionName(section int) string {
	return "Section " + strconv.Itoa(section+1)
}

// BuildAnchors picks the first and last substantial paragraphs of a
// section so a model can tell where the chapter starts and stops.
func BuildAnchors(paragraphs []string) Anchors {
	var long []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if len([]rune(p)) > anchorMinLen {
			long = append(long, p)
		}
	}
	if len(long) == 0 {
		return Anchors{}
	}
	return Anchors{Start: truncate(long[0], anchorMaxLen), End: truncate(long[len(long)-1], anchorMaxLen)}
}

// Paragraphs splits section text on blank lines.
func Paragraphs(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
