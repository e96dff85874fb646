package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dhg/hub-backend/internal/services"
)

type ProcessingHandler struct {
	processingService services.DocumentProcessingService
}

func NewProcessingHandler(processingService services.DocumentProcessingService) *ProcessingHandler {
	return &ProcessingHandler{processingService: processingService}
}

// Enqueue handles POST /expert-documents/:id/process.
func (ph *ProcessingHandler) Enqueue(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid document id"))
		return
	}
	run, err := ph.processingService.Enqueue(c.Request.Context(), docID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotFound):
			RespondError(c, http.StatusNotFound, "not_found", err)
		case errors.Is(err, services.ErrDocumentHasNoText):
			RespondError(c, http.StatusUnprocessableEntity, "no_raw_content", err)
		case errors.Is(err, services.ErrRunAlreadyPending):
			RespondError(c, http.StatusConflict, "already_pending", err)
		default:
			RespondError(c, http.StatusInternalServerError, "enqueue_failed", err)
		}
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"run": run})
}

func (ph *ProcessingHandler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid run id"))
		return
	}
	run, err := ph.processingService.GetRun(c.Request.Context(), runID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if run == nil {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("processing run not found"))
		return
	}
	RespondOK(c, gin.H{"run": run})
}
