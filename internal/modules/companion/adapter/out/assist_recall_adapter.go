package out

import (
	"context"

	"atheneum/internal/modules/assist/dto"
	assistin "atheneum/internal/modules/assist/port/in"
	"atheneum/internal/modules/companion/domain"
	companionout "atheneum/internal/modules/companion/port/out"
)

type AssistRecallAdapter struct {
	assist assistin.Usecase
}

func NewAssistRecallAdapter(assist assistin.Usecase) companionout.RecallGenerator {
	return &AssistRecallAdapter{assist: assist}
}

func (a *AssistRecallAdapter) Configured(ctx context.Context) bool {
	return a.assist.Configured(ctx)
}

func (a *AssistRecallAdapter) Orient(ctx context.Context, title, author string) (string, error) {
	out, err := a.assist.Orient(ctx, dto.OrientationInput{Title: title, Author: author})
	return out.Text, err
}

func (a *AssistRecallAdapter) Recall(ctx context.Context, rc domain.RecallContext) (string, error) {
	out, err := a.assist.Recall(ctx, dto.RecallInput{
		Title:            rc.Title,
		Author:           rc.Author,
		ChapterName:      rc.ChapterName,
		Progress:         rc.Progress,
		PreviousChapters: rc.PreviousChapters,
		StartAnchor:      rc.StartAnchor,
		Length:           string(rc.Length),
	})
	return out.Text, err
}
