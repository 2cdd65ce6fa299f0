package out

import (
	"context"

	"atheneum/internal/modules/companion/domain"
	companionout "atheneum/internal/modules/companion/port/out"
	readerin "atheneum/internal/modules/reader/port/in"
)

type ReaderPositionAdapter struct {
	reader readerin.Usecase
}

func NewReaderPositionAdapter(reader readerin.Usecase) companionout.PositionPort {
	return &ReaderPositionAdapter{reader: reader}
}

func (a *ReaderPositionAdapter) Current(ctx context.Context) (domain.RecallContext, error) {
	c, err := a.reader.Context(ctx)
	if err != nil {
		return domain.RecallContext{}, err
	}
	return domain.RecallContext{
		Title:            c.Title,
		Author:           c.Author,
		ChapterName:      c.ChapterName,
		Progress:         c.Progress,
		PreviousChapters: c.PreviousChapters,
		StartAnchor:      c.StartAnchor,
	}, nil
}
