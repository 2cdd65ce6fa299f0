package usecase

import (
	"context"

	"atheneum/internal/modules/assist/domain"
	"atheneum/internal/modules/assist/dto"
	assistin "atheneum/internal/modules/assist/port/in"
	"atheneum/internal/modules/assist/service"
)

type Interactor struct {
	svc *service.AssistService
}

func NewInteractor(svc *service.AssistService) assistin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Configured(_ context.Context) bool {
	return i.svc.Configured()
}

func (i *Interactor) Summarize(ctx context.Context, input dto.SummaryInput) (dto.SummaryOutput, error) {
	text, saved, err := i.svc.Summarize(ctx, input.BookID, domain.SummaryRequest{
		Title:            input.Title,
		Author:           input.Author,
		ChapterName:      input.ChapterName,
		Progress:         input.Progress,
		PreviousChapters: input.PreviousChapters,
		Anchors:          domain.Anchors{Start: input.StartAnchor, End: input.EndAnchor},
	})
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	return dto.SummaryOutput{Text: text, Saved: saved}, nil
}

func (i *Interactor) Recall(ctx context.Context, input dto.RecallInput) (dto.TextOutput, error) {
	return textOutput(i.svc.Recall(ctx, domain.RecallRequest{
		Title:            input.Title,
		Author:           input.Author,
		ChapterName:      input.ChapterName,
		Progress:         input.Progress,
		PreviousChapters: input.PreviousChapters,
		StartAnchor:      input.StartAnchor,
		Length:           domain.Length(input.Length),
	}))
}

func (i *Interactor) Orient(ctx context.Context, input dto.OrientationInput) (dto.TextOutput, error) {
	return textOutput(i.svc.Orient(ctx, domain.OrientationRequest{Title: input.Title, Author: input.Author}))
}

func (i *Interactor) Explain(ctx context.Context, input dto.ExplainInput) (dto.TextOutput, error) {
	return textOutput(i.svc.Explain(ctx, explainRequest(input)))
}

func (i *Interactor) FollowUp(ctx context.Context, input dto.FollowUpInput) (dto.TextOutput, error) {
	return textOutput(i.svc.FollowUp(ctx, domain.FollowUpRequest{
		ExplainRequest:   explainRequest(input.ExplainInput),
		PriorExplanation: input.PriorExplanation,
		Question:         input.Question,
	}))
}

func (i *Interactor) SaveExplanation(ctx context.Context, input dto.SaveExplanationInput) (string, error) {
	return i.svc.SaveExplanation(ctx, input.BookID, input.Text, input.Explanation)
}

func (i *Interactor) Define(ctx context.Context, input dto.DefineInput) (dto.DefinitionOutput, error) {
	def, err := i.svc.Define(ctx, input.Word)
	if err != nil {
		return dto.DefinitionOutput{}, err
	}
	out := dto.DefinitionOutput{Word: def.Word, Phonetic: def.Phonetic, Markdown: def.Markdown()}
	for _, m := range def.Meanings {
		meaning := dto.MeaningOutput{PartOfSpeech: m.PartOfSpeech}
		for _, sense := range m.Senses {
			meaning.Definitions = append(meaning.Definitions, sense.Text)
		}
		out.Meanings = append(out.Meanings, meaning)
	}
	return out, nil
}

func explainRequest(input dto.ExplainInput) domain.ExplainRequest {
	return domain.ExplainRequest{
		SelectedText:    input.SelectedText,
		BookTitle:       input.BookTitle,
		BookAuthor:      input.BookAuthor,
		ChapterName:     input.ChapterName,
		SurroundingText: input.SurroundingText,
	}
}

func textOutput(text string, err error) (dto.TextOutput, error) {
	if err != nil {
		return dto.TextOutput{}, err
	}
	return dto.TextOutput{Text: text}, nil
}
