package usecase

import (
	"context"
	"fmt"
	"strings"

	"atheneum/internal/modules/reader/domain"
	"atheneum/internal/modules/reader/dto"
	readerin "atheneum/internal/modules/reader/port/in"
	"atheneum/internal/modules/reader/service"
	apperrors "atheneum/internal/platform/errors"
)

type Interactor struct {
	svc *service.ReaderService
}

func NewInteractor(svc *service.ReaderService) readerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (dto.OpenOutput, error) {
	opened, err := i.svc.Open(ctx, input.BookID)
	if err != nil {
		return dto.OpenOutput{}, err
	}
	toc := make([]dto.TOCEntry, 0, len(opened.TOC))
	for _, item := range opened.TOC {
		toc = append(toc, dto.TOCEntry{Label: item.Label, Token: item.Token, Section: item.Section, Depth: item.Depth})
	}
	return dto.OpenOutput{
		Generation: opened.Generation,
		BookID:     opened.Book.ID,
		Kind:       opened.Book.Kind,
		Title:      opened.Book.Title,
		Author:     opened.Book.Author,
		TOC:        toc,
		Sections:   opened.Sections,
		Events:     opened.Events,
	}, nil
}

func (i *Interactor) Handle(ctx context.Context, input dto.EventInput) (dto.LocationOutput, error) {
	located, err := i.svc.Handle(ctx, input.Generation, input.Event)
	if err != nil {
		return dto.LocationOutput{}, err
	}
	return mapLocation(located), nil
}

func (i *Interactor) Next(ctx context.Context) error {
	return i.svc.Next(ctx)
}

func (i *Interactor) Prev(ctx context.Context) error {
	return i.svc.Prev(ctx)
}

func (i *Interactor) GoTo(ctx context.Context, input dto.GoToInput) error {
	return i.svc.GoTo(ctx, domain.Target{Token: input.Token, Fraction: input.Fraction})
}

func (i *Interactor) Location(_ context.Context) (dto.LocationOutput, error) {
	located, err := i.svc.Location()
	if err != nil {
		return dto.LocationOutput{}, err
	}
	return mapLocation(located), nil
}

func (i *Interactor) Passage(_ context.Context) (dto.PassageOutput, error) {
	p, err := i.svc.Passage()
	if err != nil {
		return dto.PassageOutput{}, err
	}
	return dto.PassageOutput{Token: p.Token, Section: p.Section, Paragraphs: p.Paragraphs}, nil
}

func (i *Interactor) Surrounding(_ context.Context, paragraph int) (dto.SurroundingOutput, error) {
	text, surrounding, err := i.svc.Surrounding(paragraph)
	if err != nil {
		return dto.SurroundingOutput{}, err
	}
	return dto.SurroundingOutput{Text: text, Surrounding: surrounding}, nil
}

func (i *Interactor) Highlight(ctx context.Context, input dto.HighlightInput) (dto.HighlightOutput, error) {
	h, err := i.svc.Highlight(ctx, input.Paragraph, input.Color)
	if err != nil {
		return dto.HighlightOutput{}, err
	}
	return dto.HighlightOutput{ID: h.ID, Range: h.Range, Text: h.Text, Color: h.Color}, nil
}

func (i *Interactor) RemoveHighlight(ctx context.Context, input dto.RemoveHighlightInput) error {
	return i.svc.RemoveHighlight(ctx, input.ID, input.Range)
}

func (i *Interactor) Context(_ context.Context) (dto.ContextOutput, error) {
	rc, err := i.svc.Context()
	if err != nil {
		return dto.ContextOutput{}, err
	}
	return dto.ContextOutput{
		BookID:           rc.BookID,
		Title:            rc.Title,
		Author:           rc.Author,
		ChapterName:      rc.ChapterName,
		Progress:         rc.Progress,
		PreviousChapters: rc.PreviousChapters,
		StartAnchor:      rc.Anchors.Start,
		EndAnchor:        rc.Anchors.End,
	}, nil
}

func (i *Interactor) Interact(ctx context.Context) error {
	return i.svc.Interact(ctx)
}

func (i *Interactor) Tap(_ context.Context) dto.ChromeOutput {
	return mapChrome(i.svc.Tap())
}

func (i *Interactor) OpenPanel(_ context.Context, panel string) dto.ChromeOutput {
	p, err := parsePanel(panel)
	if err != nil {
		return mapChrome(i.svc.ClosePanel())
	}
	return mapChrome(i.svc.OpenPanel(p))
}

func (i *Interactor) ClosePanel(_ context.Context) dto.ChromeOutput {
	return mapChrome(i.svc.ClosePanel())
}

func (i *Interactor) SetFocus(_ context.Context, on bool) dto.ChromeOutput {
	return mapChrome(i.svc.SetFocus(on))
}

func (i *Interactor) Close(ctx context.Context) error {
	return i.svc.Close(ctx)
}

func mapLocation(l service.Located) dto.LocationOutput {
	return dto.LocationOutput{
		BookID:      l.BookID,
		Token:       l.Record.CFI,
		Percentage:  l.Record.Percentage,
		Page:        l.Record.Displayed.Page,
		Total:       l.Record.Displayed.Total,
		Section:     l.Section,
		ChapterName: l.ChapterName,
		Degraded:    l.Degraded,
		Stale:       l.Stale,
	}
}

var panelNames = map[domain.Panel]string{
	domain.PanelNone:       "",
	domain.PanelTOC:        "toc",
	domain.PanelAppearance: "appearance",
}

func parsePanel(name string) (domain.Panel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range panelNames {
		if n == name && p != domain.PanelNone {
			return p, nil
		}
	}
	return domain.PanelNone, fmt.Errorf("%w: unknown panel %q", apperrors.ErrInvalidInput, name)
}

func mapChrome(c domain.Chrome) dto.ChromeOutput {
	return dto.ChromeOutput{
		ControlsVisible: c.ControlsVisible(),
		InFocus:         c.InFocus(),
		ExitVisible:     c.State == domain.ChromeFocusExit,
		Panel:           panelNames[c.Panel],
	}
}
