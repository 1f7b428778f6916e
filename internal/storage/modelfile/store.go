// Package modelfile persists a FittedModel as a single JSON document.
package modelfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"hotel_recommender/internal/domain"
)

type Store struct {
	path string
}

func New(path string) *Store { return &Store{path: path} }

func (s *Store) Path() string { return s.path }

// SaveModel writes to a temp file in the same directory and renames it
// over the target, so readers never see a partial model.
func (s *Store) SaveModel(ctx context.Context, m *domain.FittedModel) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// LoadModel returns ErrModelNotFitted when no model has been written yet.
func (s *Store) LoadModel(ctx context.Context) (*domain.FittedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no model at %s", domain.ErrModelNotFitted, s.path)
	}
	if err != nil {
		return nil, err
	}
	var m domain.FittedModel
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrSchemaMismatch, s.path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
