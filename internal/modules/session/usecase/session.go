package usecase

import (
	"context"

	sessiondto "atheneum/internal/modules/session/dto"
	sessionin "atheneum/internal/modules/session/port/in"
	"atheneum/internal/modules/session/service"
)

type Interactor struct {
	svc *service.SessionService
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Begin(ctx context.Context, input sessiondto.BeginInput) (sessiondto.BeginOutput, error) {
	active, err := i.svc.Begin(ctx, input.BookID, input.BookTitle)
	if err != nil {
		return sessiondto.BeginOutput{}, err
	}
	return sessiondto.BeginOutput{SessionID: active.SessionID, BookID: active.BookID, StartedAt: active.StartedAt}, nil
}

func (i *Interactor) RecordInteraction(ctx context.Context) error {
	_, err := i.svc.RecordInteraction(ctx)
	return err
}

func (i *Interactor) RecordLocation(ctx context.Context, input sessiondto.LocationInput) error {
	return i.svc.RecordLocation(ctx, input.BookID, input.Index)
}

func (i *Interactor) End(ctx context.Context) (sessiondto.EndOutput, error) {
	closed, persisted, err := i.svc.End(ctx)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	return sessiondto.EndOutput{
		BookID:     closed.BookID,
		Persisted:  persisted,
		PagesRead:  closed.PagesRead,
		DurationMs: closed.DurationMs,
	}, nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	active, progress, err := i.svc.Active(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	out := sessiondto.ActiveSessionOutput{
		SessionID: active.SessionID,
		BookID:    active.BookID,
		BookTitle: active.BookTitle,
		StartedAt: active.StartedAt,
	}
	if progress != nil {
		out.InProcess = true
		out.DurationMs = progress.DurationMs
		out.PagesRead = progress.PagesRead
	}
	return out, nil
}
