package out

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"rsc.io/pdf"

	"atheneum/internal/modules/reader/domain"
	readerout "atheneum/internal/modules/reader/port/out"
	apperrors "atheneum/internal/platform/errors"
)

// lineTolerance is how far apart two glyph baselines may be and still
// count as one line.
const lineTolerance = 2.0

// PDFRenderer shows one page per section. rsc.io/pdf outlines carry no page
// destinations so the TOC stays empty and chapters fall back to page names.
type PDFRenderer struct {
	*pager
	file *os.File
	doc  *pdf.Reader
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{pager: newPager()}
}

var _ readerout.Renderer = (*PDFRenderer)(nil)

func (r *PDFRenderer) Open(_ context.Context, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open pdf: %w", apperrors.ErrRenderer, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: stat pdf: %w", apperrors.ErrRenderer, err)
	}
	defer func() {
		if rec := recover(); rec != nil {
			f.Close()
			err = fmt.Errorf("%w: malformed pdf: %v", apperrors.ErrRenderer, rec)
		}
	}()
	doc, err := pdf.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: read pdf: %w", apperrors.ErrRenderer, err)
	}
	total := doc.NumPage()
	if total == 0 {
		f.Close()
		return fmt.Errorf("%w: pdf has no pages", apperrors.ErrRenderer)
	}
	r.file = f
	r.doc = doc
	r.mu.Lock()
	r.count = total
	r.current = 0
	r.mu.Unlock()
	return nil
}

func (r *PDFRenderer) TOC() []domain.TOCItem {
	return nil
}

func (r *PDFRenderer) SectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Section extracts the text of a zero-based page, one paragraph per line.
func (r *PDFRenderer) Section(index int) (text string, err error) {
	if r.doc == nil {
		return "", fmt.Errorf("%w: pdf is not open", apperrors.ErrRenderer)
	}
	if index < 0 || index >= r.SectionCount() {
		return "", fmt.Errorf("%w: page %d out of range", apperrors.ErrRenderer, index+1)
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: page %d: %v", apperrors.ErrRenderer, index+1, rec)
		}
	}()
	page := r.doc.Page(index + 1)
	if page.V.IsNull() {
		return "", fmt.Errorf("%w: pdf page %d is null", apperrors.ErrRenderer, index+1)
	}
	return strings.Join(pageLines(page.Content().Text), "\n\n"), nil
}

func (r *PDFRenderer) GoTo(_ context.Context, target domain.Target) error {
	if r.doc == nil {
		return fmt.Errorf("%w: pdf is not open", apperrors.ErrRenderer)
	}
	index := r.indexFor(target.Fraction)
	if target.Token != "" {
		page, ok := domain.ParsePageToken(target.Token)
		if !ok {
			return fmt.Errorf("%w: unknown page %q", apperrors.ErrInvalidInput, target.Token)
		}
		index = page
	}
	r.relocate(index)
	return nil
}

func (r *PDFRenderer) Next(_ context.Context) error {
	r.relocate(r.position() + 1)
	return nil
}

func (r *PDFRenderer) Prev(_ context.Context) error {
	r.relocate(r.position() - 1)
	return nil
}

func (r *PDFRenderer) AddAnnotation(rng, color string) error {
	if _, _, ok := domain.ParseParagraphRange(rng); !ok {
		return fmt.Errorf("%w: unknown range %q", apperrors.ErrInvalidInput, rng)
	}
	r.annotate(rng, color)
	return nil
}

func (r *PDFRenderer) DeleteAnnotation(rng string) error {
	r.unannotate(rng)
	return nil
}

func (r *PDFRenderer) Events() <-chan domain.LocationEvent {
	return r.stream.events()
}

func (r *PDFRenderer) Close() error {
	r.stream.close()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	r.doc = nil
	return err
}

func (r *PDFRenderer) relocate(index int) {
	index, total := r.move(index)
	r.stream.emit(domain.PdfLocation{PageIndex: index, HasPage: true, PageTotal: total})
}

// pageLines groups glyph runs by baseline, top to bottom, left to right.
func pageLines(texts []pdf.Text) []string {
	runs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			runs = append(runs, t)
		}
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if math.Abs(runs[i].Y-runs[j].Y) > lineTolerance {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var (
		lines   []string
		current strings.Builder
		lastY   float64
		lastEnd float64
	)
	flush := func() {
		if line := strings.Join(strings.Fields(current.String()), " "); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}
	for i, t := range runs {
		if i > 0 && math.Abs(t.Y-lastY) > lineTolerance {
			flush()
		} else if i > 0 && t.X-lastEnd > t.FontSize*0.2 {
			current.WriteString(" ")
		}
		current.WriteString(t.S)
		lastY = t.Y
		lastEnd = t.X + t.W
	}
	flush()
	return lines
}
