package handlers

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crackdetect-service/internal/core/domain"
)

func (h *Handler) GetImage(c *gin.Context) {
	kind := domain.ArtifactKind(c.Param("kind"))
	if kind != domain.ArtifactOriginal && kind != domain.ArtifactResult {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrArtifactNotFound.Error()})
		return
	}

	name := c.Param("id")
	ext := filepath.Ext(name)
	id, err := uuid.Parse(strings.TrimSuffix(name, ext))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrArtifactNotFound.Error()})
		return
	}

	ref := domain.ArtifactRef{Kind: kind, ID: id, Ext: ext}
	rc, err := h.store.Open(c.Request.Context(), ref)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
