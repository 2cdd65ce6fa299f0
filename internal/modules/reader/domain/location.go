package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DegradedProgressStep is how far progress moves when the renderer cannot
// say where the reader is.
const DegradedProgressStep = 0.01

const NoLocation = -1

type TOCItem struct {
	Label   string
	Token   string
	Section int
	Depth   int
}

// LocationEvent is what a renderer reports after it relocates. It is one of
// EbookLocation or PdfLocation.
type LocationEvent interface {
	isLocationEvent()
}

type EbookLocation struct {
	CFI          string
	Fraction     float64
	SectionIndex int
	SectionTotal int
	TOCItem      *TOCItem
}

// PdfLocation carries a zero-based page index when HasPage is set. Without
// it the event only says the document is being read.
type PdfLocation struct {
	PageIndex int
	HasPage   bool
	PageTotal int
}

func (EbookLocation) isLocationEvent() {}
func (PdfLocation) isLocationEvent()   {}

type Displayed struct {
	Page  int
	Total int
}

type LocationRecord struct {
	CFI        string
	Percentage float64
	Displayed  Displayed
	TOCItem    *TOCItem
}

// Reconciliation is what the reconciler does with one event.
type Reconciliation struct {
	Record   LocationRecord
	Cursor   string
	Page     int
	Location int
	Degraded bool
}

// Reconcile normalizes an event. progress is the book's last known
// fraction and only matters for degraded PDF events.
func Reconcile(ev LocationEvent, progress float64) Reconciliation {
	switch e := ev.(type) {
	case EbookLocation:
		return Reconciliation{
			Record: LocationRecord{
				CFI:        e.CFI,
				Percentage: e.Fraction,
				Displayed:  Displayed{Page: e.SectionIndex + 1, Total: e.SectionTotal},
				TOCItem:    e.TOCItem,
			},
			Cursor:   e.CFI,
			Location: e.SectionIndex,
		}
	case PdfLocation:
		if !e.HasPage {
			next := progress + DegradedProgressStep
			if next > 1 {
				next = 1
			}
			return Reconciliation{
				Record:   LocationRecord{Percentage: next, Displayed: Displayed{Total: e.PageTotal}},
				Location: NoLocation,
				Degraded: true,
			}
		}
		page := e.PageIndex + 1
		fraction := 0.0
		if e.PageTotal > 0 {
			fraction = float64(page) / float64(e.PageTotal)
		}
		token := PageToken(e.PageIndex)
		return Reconciliation{
			Record: LocationRecord{
				CFI:        token,
				Percentage: fraction,
				Displayed:  Displayed{Page: page, Total: e.PageTotal},
			},
			Cursor:   token,
			Page:     page,
			Location: e.PageIndex,
		}
	default:
		panic(fmt.Sprintf("unhandled location event %T", ev))
	}
}

// SectionToken is the spine step of an EPUB CFI for a zero-based section.
func SectionToken(section int) string {
	return fmt.Sprintf("epubcfi(/6/%d)", 2*(section+1))
}

// ParseSectionToken reads the spine step of any EPUB CFI, including the
// longer ones other readers write.
func ParseSectionToken(token string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(token), "epubcfi(/6/")
	if !ok {
		return 0, false
	}
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end <= 0 {
		return 0, false
	}
	step, err := strconv.Atoi(rest[:end])
	if err != nil || step < 2 || step%2 != 0 {
		return 0, false
	}
	return step/2 - 1, true
}

// PageToken is the 1-based page number a PDF cursor stores.
func PageToken(pageIndex int) string {
	return strconv.Itoa(pageIndex + 1)
}

func ParsePageToken(token string) (int, bool) {
	page, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || page < 1 {
		return 0, false
	}
	return page - 1, true
}

// ParagraphRange addresses one paragraph of the section at token.
func ParagraphRange(token string, paragraph int) string {
	return fmt.Sprintf("%s!/p%d", token, paragraph)
}

func ParseParagraphRange(r string) (string, int, bool) {
	idx := strings.LastIndex(r, "!/p")
	if idx <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(r[idx+3:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return r[:idx], n, true
}

// Target is where GoTo should land: a token when set, otherwise a fraction.
type Target struct {
	Token    string
	Fraction float64
}
