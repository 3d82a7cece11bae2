package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bitacora-api/internal/middleware"
	"github.com/sjperalta/bitacora-api/internal/services"
)

type EntryHandler struct {
	entrySvc *services.EntryService
}

func NewEntryHandler(entrySvc *services.EntryService) *EntryHandler {
	return &EntryHandler{entrySvc: entrySvc}
}

// CreateEntryRequest is a manual note. Accepts {"entry": {...}} or the flat object.
type CreateEntryRequest struct {
	Date    string  `json:"date" example:"2025-03-01"`
	Title   *string `json:"title"`
	Content string  `json:"content"`
}

// UpdateEntryRequest replaces the title and content of a manual note
type UpdateEntryRequest struct {
	Title   *string `json:"title"`
	Content string  `json:"content"`
}

// EventRequest is an entry sent by incident tracking, the mobile app or the system
type EventRequest struct {
	Source     string   `json:"source" example:"MOBILE"`
	Title      *string  `json:"title"`
	Content    string   `json:"content"`
	IncidentID *uint    `json:"incident_id"`
	Photos     []string `json:"photos"`
}

func bindBody(c *gin.Context, key string, obj interface{}) error {
	err := BindNestedOrFlat(c, key, obj)
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return services.NewValidationError("body", "el cuerpo de la solicitud es demasiado grande")
	case err != nil:
		return services.NewValidationError("body", "JSON inválido")
	}
	return nil
}

// @Summary Create a manual entry
// @Description Adds a note to an open day. Closed days answer 409.
// @Tags Entries
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param request body CreateEntryRequest true "Entry"
// @Success 201 {object} models.LogEntryResponse
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/entries [post]
func (h *EntryHandler) Create(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req CreateEntryRequest
	if err := bindBody(c, "entry", &req); err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.entrySvc.CreateManualEntry(c.Request.Context(), middleware.GetActor(c), projectID, services.ManualEntryInput{
		Date:    req.Date,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, entry.ToResponse())
}

// @Summary Update a manual entry
// @Tags Entries
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param entry_id path int true "Entry ID"
// @Param request body UpdateEntryRequest true "Entry"
// @Success 200 {object} models.LogEntryResponse
// @Failure 409 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/entries/{entry_id} [put]
func (h *EntryHandler) Update(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	entryID, err := idParam(c, "entry_id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req UpdateEntryRequest
	if err := bindBody(c, "entry", &req); err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.entrySvc.UpdateManualEntry(c.Request.Context(), middleware.GetActor(c), projectID, entryID, services.UpdateEntryInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, entry.ToResponse())
}

// @Summary Delete a manual entry
// @Tags Entries
// @Produce json
// @Param project_id path int true "Project ID"
// @Param entry_id path int true "Entry ID"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/entries/{entry_id} [delete]
func (h *EntryHandler) Delete(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	entryID, err := idParam(c, "entry_id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.entrySvc.DeleteManualEntry(c.Request.Context(), middleware.GetActor(c), projectID, entryID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": entryID})
}

// @Summary Record an event entry
// @Description Incident, mobile and system entries. Events for a closed day are stored locked.
// @Tags Entries
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param request body EventRequest true "Event"
// @Success 201 {object} models.LogEntryResponse
// @Failure 422 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/events [post]
func (h *EntryHandler) RecordEvent(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req EventRequest
	if err := bindBody(c, "event", &req); err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.entrySvc.RecordEvent(c.Request.Context(), middleware.GetActor(c), projectID, services.EventInput{
		Source:     req.Source,
		Title:      req.Title,
		Content:    req.Content,
		IncidentID: req.IncidentID,
		Photos:     req.Photos,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, entry.ToResponse())
}
