package ports

import (
	"context"
	"io"

	"crackdetect-service/internal/core/domain"
)

// ArtifactStore places image blobs under store-generated identifiers.
// Put either writes the blob fully or leaves nothing referenced behind.
// Delete is idempotent: removing an absent artifact is not an error.
type ArtifactStore interface {
	Put(ctx context.Context, kind domain.ArtifactKind, ext string, r io.Reader) (domain.ArtifactRef, error)
	Delete(ctx context.Context, ref domain.ArtifactRef) error
	Open(ctx context.Context, ref domain.ArtifactRef) (io.ReadCloser, error)
}
