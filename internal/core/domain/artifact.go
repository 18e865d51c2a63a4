package domain

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type ArtifactKind string

const (
	ArtifactOriginal ArtifactKind = "original"
	ArtifactResult   ArtifactKind = "result"
)

// ArtifactRef identifies a stored image blob. The ID carries all the
// entropy; user-supplied filenames never reach the store, only a
// whitelisted extension survives as a content-type hint.
type ArtifactRef struct {
	Kind ArtifactKind
	ID   uuid.UUID
	Ext  string
}

func (r ArtifactRef) Filename() string {
	return r.ID.String() + r.Ext
}

func (r ArtifactRef) IsZero() bool {
	return r.ID == uuid.Nil
}

var allowedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ArtifactExt maps an uploaded filename to a safe extension. Anything
// outside the whitelist falls back to .jpg.
func ArtifactExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExts[ext]; ok {
		return ext
	}
	return ".jpg"
}
