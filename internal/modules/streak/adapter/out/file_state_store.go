package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"atheneum/internal/modules/streak/domain"
	streakout "atheneum/internal/modules/streak/port/out"
	apperrors "atheneum/internal/platform/errors"
)

type FileStateStore struct {
	path string
}

func NewFileStateStore(path string) streakout.StateStore {
	return &FileStateStore{path: path}
}

func (s *FileStateStore) Load(_ context.Context) (domain.State, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.State{}, nil
		}
		return domain.State{}, apperrors.Storage("read streak", err)
	}
	state := domain.State{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.State{}, apperrors.Storage("decode streak", err)
	}
	return state, nil
}

// Save writes through a temp file so a crash never leaves half a ledger.
func (s *FileStateStore) Save(_ context.Context, state domain.State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.Storage("create streak dir", err)
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal streak: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return apperrors.Storage("write streak", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.Storage("replace streak", err)
	}
	return nil
}
