package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dhg/hub-backend/internal/services"
)

type PresentationHandler struct {
	presentationService services.PresentationService
}

func NewPresentationHandler(presentationService services.PresentationService) *PresentationHandler {
	return &PresentationHandler{presentationService: presentationService}
}

// List handles GET /presentations?search=&subjects=&limit=. The subjects
// param is a comma-separated list of subject classification IDs; when it is
// present the search param is ignored.
func (ph *PresentationHandler) List(c *gin.Context) {
	params := services.ListPresentationsParams{
		Search: c.Query("search"),
	}

	if raw := strings.TrimSpace(c.Query("subjects")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid subject id: "+part))
				return
			}
			params.SubjectIDs = append(params.SubjectIDs, id)
		}
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid limit"))
			return
		}
		params.Limit = limit
	}

	list, err := ph.presentationService.ListPresentations(c.Request.Context(), params)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, list)
}

func (ph *PresentationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid presentation id"))
		return
	}
	detail, err := ph.presentationService.GetPresentation(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if detail == nil {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("presentation not found"))
		return
	}
	RespondOK(c, detail)
}
