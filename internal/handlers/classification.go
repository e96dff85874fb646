package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhg/hub-backend/internal/services"
)

type ClassificationHandler struct {
	classificationService services.ClassificationService
}

func NewClassificationHandler(classificationService services.ClassificationService) *ClassificationHandler {
	return &ClassificationHandler{classificationService: classificationService}
}

func (ch *ClassificationHandler) ListSubjects(c *gin.Context) {
	subjects, err := ch.classificationService.ListSubjects(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"subjects": subjects})
}
