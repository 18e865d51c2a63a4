package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/core/ports/output"
)

// Store keeps artifacts on local disk under <root>/<kind>/<id><ext>.
// Identifiers are generated here, so concurrent writes never collide and
// path construction never sees user input.
type Store struct {
	root string
}

var _ ports.ArtifactStore = (*Store)(nil)

func New(root string) (*Store, error) {
	for _, kind := range []domain.ArtifactKind{domain.ArtifactOriginal, domain.ArtifactResult} {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("create artifact dir: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Put writes to a temp file in the target directory and renames it into
// place, so a failed write never leaves a referenced partial file.
func (s *Store) Put(ctx context.Context, kind domain.ArtifactKind, ext string, r io.Reader) (domain.ArtifactRef, error) {
	ref := domain.ArtifactRef{Kind: kind, ID: uuid.New(), Ext: domain.ArtifactExt(ext)}

	dir := filepath.Join(s.root, string(kind))
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return domain.ArtifactRef{}, fmt.Errorf("create artifact: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return domain.ArtifactRef{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return domain.ArtifactRef{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(ref)); err != nil {
		os.Remove(tmp.Name())
		return domain.ArtifactRef{}, fmt.Errorf("place artifact: %w", err)
	}
	return ref, nil
}

func (s *Store) Delete(ctx context.Context, ref domain.ArtifactRef) error {
	err := os.Remove(s.path(ref))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

func (s *Store) Open(ctx context.Context, ref domain.ArtifactRef) (io.ReadCloser, error) {
	f, err := os.Open(s.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, nil
}

func (s *Store) path(ref domain.ArtifactRef) string {
	return filepath.Join(s.root, string(ref.Kind), ref.Filename())
}
