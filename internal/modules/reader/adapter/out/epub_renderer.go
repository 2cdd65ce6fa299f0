package out

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"

	"atheneum/internal/modules/reader/domain"
	readerout "atheneum/internal/modules/reader/port/out"
	apperrors "atheneum/internal/platform/errors"
)

const ncxMediaType = "application/x-dtbncx+xml"

type ncx struct {
	NavMap struct {
		Points []navPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type navPoint struct {
	Label struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

// EPUBRenderer lays an EPUB out one spine item per section and addresses
// sections with spine-step CFIs.
type EPUBRenderer struct {
	*pager
	sections []string
	toc      []domain.TOCItem
}

func NewEPUBRenderer() *EPUBRenderer {
	return &EPUBRenderer{pager: newPager()}
}

var _ readerout.Renderer = (*EPUBRenderer)(nil)

func (r *EPUBRenderer) Open(_ context.Context, filePath string) error {
	rc, err := epub.OpenReader(filePath)
	if err != nil {
		return fmt.Errorf("%w: open epub: %w", apperrors.ErrRenderer, err)
	}
	defer rc.Close()
	if len(rc.Rootfiles) == 0 {
		return fmt.Errorf("%w: epub has no rootfiles", apperrors.ErrRenderer)
	}
	book := rc.Rootfiles[0]

	hrefs := make([]string, 0, len(book.Spine.Itemrefs))
	sections := make([]string, 0, len(book.Spine.Itemrefs))
	headings := make([]string, 0, len(book.Spine.Itemrefs))
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		text, heading, err := readSection(ref.Item)
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", apperrors.ErrRenderer, ref.Item.HREF, err)
		}
		hrefs = append(hrefs, ref.Item.HREF)
		sections = append(sections, text)
		headings = append(headings, heading)
	}
	if len(sections) == 0 {
		return fmt.Errorf("%w: epub has an empty spine", apperrors.ErrRenderer)
	}

	toc, err := readNCX(book, hrefs)
	if err != nil || len(toc) == 0 {
		toc = headingTOC(headings)
	}

	r.mu.Lock()
	r.count = len(sections)
	r.current = 0
	r.mu.Unlock()
	r.sections = sections
	r.toc = toc
	return nil
}

func (r *EPUBRenderer) TOC() []domain.TOCItem {
	return append([]domain.TOCItem(nil), r.toc...)
}

func (r *EPUBRenderer) SectionCount() int {
	return len(r.sections)
}

func (r *EPUBRenderer) Section(index int) (string, error) {
	if index < 0 || index >= len(r.sections) {
		return "", fmt.Errorf("%w: section %d out of range", apperrors.ErrRenderer, index)
	}
	return r.sections[index], nil
}

func (r *EPUBRenderer) GoTo(_ context.Context, target domain.Target) error {
	if len(r.sections) == 0 {
		return fmt.Errorf("%w: epub is not open", apperrors.ErrRenderer)
	}
	index := r.indexFor(target.Fraction)
	if target.Token != "" {
		section, ok := domain.ParseSectionToken(target.Token)
		if !ok {
			return fmt.Errorf("%w: unknown location %q", apperrors.ErrInvalidInput, target.Token)
		}
		index = section
	}
	r.relocate(index)
	return nil
}

func (r *EPUBRenderer) Next(_ context.Context) error {
	r.relocate(r.position() + 1)
	return nil
}

func (r *EPUBRenderer) Prev(_ context.Context) error {
	r.relocate(r.position() - 1)
	return nil
}

func (r *EPUBRenderer) AddAnnotation(rng, color string) error {
	if _, _, ok := domain.ParseParagraphRange(rng); !ok {
		return fmt.Errorf("%w: unknown range %q", apperrors.ErrInvalidInput, rng)
	}
	r.annotate(rng, color)
	return nil
}

func (r *EPUBRenderer) DeleteAnnotation(rng string) error {
	r.unannotate(rng)
	return nil
}

func (r *EPUBRenderer) Events() <-chan domain.LocationEvent {
	return r.stream.events()
}

func (r *EPUBRenderer) Close() error {
	r.stream.close()
	return nil
}

func (r *EPUBRenderer) relocate(index int) {
	index, total := r.move(index)
	var item *domain.TOCItem
	if i, ok := domain.ChapterAt(r.toc, index); ok {
		found := r.toc[i]
		item = &found
	}
	r.stream.emit(domain.EbookLocation{
		CFI:          domain.SectionToken(index),
		Fraction:     float64(index+1) / float64(total),
		SectionIndex: index,
		SectionTotal: total,
		TOCItem:      item,
	})
}

func readSection(item *epub.Item) (string, string, error) {
	rc, err := item.Open()
	if err != nil {
		return "", "", err
	}
	defer rc.Close()
	doc, err := html.Parse(rc)
	if err != nil {
		return "", "", err
	}
	paragraphs, heading := extractParagraphs(doc)
	return strings.Join(paragraphs, "\n\n"), heading, nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "dd": true, "dt": true, "figcaption": true,
}

// extractParagraphs flattens XHTML into one string per block element and
// returns the first heading it saw.
func extractParagraphs(doc *html.Node) ([]string, string) {
	var (
		paragraphs []string
		heading    string
		current    strings.Builder
	)
	flush := func() {
		if text := strings.Join(strings.Fields(current.String()), " "); text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
			current.WriteString(" ")
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head":
				return
			case "br":
				current.WriteString(" ")
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			before := len(paragraphs)
			flush()
			if heading == "" && len(n.Data) == 2 && n.Data[0] == 'h' && len(paragraphs) > before {
				heading = paragraphs[len(paragraphs)-1]
			}
		}
	}
	walk(doc)
	flush()
	return paragraphs, heading
}

func readNCX(book *epub.Rootfile, spine []string) ([]domain.TOCItem, error) {
	var ncxItem *epub.Item
	for i := range book.Manifest.Items {
		if book.Manifest.Items[i].MediaType == ncxMediaType {
			ncxItem = &book.Manifest.Items[i]
			break
		}
	}
	if ncxItem == nil {
		return nil, errors.New("no NCX in manifest")
	}
	rc, err := ncxItem.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var doc ncx
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse NCX: %w", err)
	}
	var items []domain.TOCItem
	flattenNavPoints(doc.NavMap.Points, spine, 0, &items)
	return items, nil
}

func flattenNavPoints(points []navPoint, spine []string, depth int, items *[]domain.TOCItem) {
	for _, np := range points {
		if section, ok := spineIndex(spine, np.Content.Src); ok {
			*items = append(*items, domain.TOCItem{
				Label:   strings.TrimSpace(np.Label.Text),
				Token:   domain.SectionToken(section),
				Section: section,
				Depth:   depth,
			})
		}
		flattenNavPoints(np.Children, spine, depth+1, items)
	}
}

// spineIndex matches an NCX src against spine hrefs, ignoring fragments
// and directory differences between the NCX and the package document.
func spineIndex(spine []string, src string) (int, bool) {
	if idx := strings.Index(src, "#"); idx != -1 {
		src = src[:idx]
	}
	for i, href := range spine {
		if href == src {
			return i, true
		}
	}
	for i, href := range spine {
		if path.Base(href) == path.Base(src) {
			return i, true
		}
	}
	return 0, false
}

func headingTOC(headings []string) []domain.TOCItem {
	var items []domain.TOCItem
	for i, h := range headings {
		if h == "" {
			continue
		}
		items = append(items, domain.TOCItem{Label: h, Token: domain.SectionToken(i), Section: i})
	}
	return items
}
