package out

import (
	"context"

	"atheneum/internal/modules/library/domain"
)

// BookStore is the durable per-book store. Get returns apperrors.ErrNotFound
// for unknown ids; failures are tagged with apperrors.ErrStorage.
type BookStore interface {
	Get(ctx context.Context, id string) (domain.Book, error)
	Put(ctx context.Context, book domain.Book) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Book, error)
}

type NotesExporter interface {
	Export(ctx context.Context, book domain.Book) (string, error)
}

// ReadingDayRecorder marks today as a reading day.
type ReadingDayRecorder interface {
	RecordReadingDay(ctx context.Context) error
}
