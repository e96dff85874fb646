package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dhg/hub-backend/internal/services"
)

type FilterProfileHandler struct {
	filterService services.FilterService
}

func NewFilterProfileHandler(filterService services.FilterService) *FilterProfileHandler {
	return &FilterProfileHandler{filterService: filterService}
}

func (fh *FilterProfileHandler) List(c *gin.Context) {
	profiles, err := fh.filterService.ListProfiles(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"profiles": profiles})
}

func (fh *FilterProfileHandler) GetActive(c *gin.Context) {
	profile, err := fh.filterService.GetActiveProfile(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_active_failed", err)
		return
	}
	// No active profile is a normal state, not an error.
	RespondOK(c, gin.H{"profile": profile})
}

func (fh *FilterProfileHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid profile id"))
		return
	}
	profile, err := fh.filterService.SetActiveProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "activate_failed", err)
		return
	}
	RespondOK(c, gin.H{"profile": profile})
}
