package handlers

import (
	"github.com/gin-gonic/gin"

	"crackdetect-service/internal/adapters/primary/http/middleware"
	"crackdetect-service/internal/core/ports/output"
	"crackdetect-service/internal/core/services"
)

type Handler struct {
	authSvc       *services.AuthService
	submissionSvc *services.SubmissionService
	detectionSvc  *services.DetectionService
	store         ports.ArtifactStore
}

func New(
	authSvc *services.AuthService,
	submissionSvc *services.SubmissionService,
	detectionSvc *services.DetectionService,
	store ports.ArtifactStore,
) *Handler {
	return &Handler{
		authSvc:       authSvc,
		submissionSvc: submissionSvc,
		detectionSvc:  detectionSvc,
		store:         store,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Auth
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	// Artifact ids are unguessable, no auth on image reads
	r.GET("/images/:kind/:id", h.GetImage)

	authed := r.Group("", middleware.RequireAuth(h.authSvc))
	authed.GET("/auth/me", h.Me)
	authed.POST("/detect", h.Detect)
	authed.GET("/detections", h.ListDetections)
	authed.GET("/stats", h.Stats)
}
