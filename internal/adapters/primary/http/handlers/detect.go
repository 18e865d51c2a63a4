package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"crackdetect-service/internal/adapters/primary/http/dto"
	"crackdetect-service/internal/adapters/primary/http/middleware"
	"crackdetect-service/internal/core/domain"
	"crackdetect-service/internal/core/services"
)

func (h *Handler) Detect(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidInput.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidInput.Error()})
		return
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidInput.Error()})
		return
	}

	detection, err := h.submissionSvc.Submit(c.Request.Context(), accountID, services.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		log.WithError(err).WithField("account_id", accountID).Error("submission failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDetectionResponse(detection))
}

func (h *Handler) ListDetections(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	detections, err := h.detectionSvc.ListRecent(c.Request.Context(), accountID)
	if err != nil {
		log.WithError(err).Error("list detections failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.DetectionResponse, 0, len(detections))
	for _, d := range detections {
		items = append(items, dto.ToDetectionResponse(d))
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Stats(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	stats, err := h.detectionSvc.Stats(c.Request.Context(), accountID)
	if err != nil {
		log.WithError(err).Error("stats failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatsResponse(stats))
}
