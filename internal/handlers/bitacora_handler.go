package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bitacora-api/internal/middleware"
	"github.com/sjperalta/bitacora-api/internal/services"
)

type BitacoraHandler struct {
	bitacoraSvc *services.BitacoraService
	exportSvc   *services.ExportService
}

func NewBitacoraHandler(bitacoraSvc *services.BitacoraService, exportSvc *services.ExportService) *BitacoraHandler {
	return &BitacoraHandler{
		bitacoraSvc: bitacoraSvc,
		exportSvc:   exportSvc,
	}
}

// @Summary Project bitácora summary
// @Description Entry counts by source, closed days and the state of today
// @Tags Bitacora
// @Produce json
// @Param project_id path int true "Project ID"
// @Success 200 {object} services.ProjectSummary
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/summary [get]
func (h *BitacoraHandler) Summary(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.bitacoraSvc.GetProjectSummary(c.Request.Context(), middleware.GetActor(c), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, summary)
}

// @Summary Day view
// @Description Entries of a calendar day, newest first, and whether the day is closed
// @Tags Bitacora
// @Produce json
// @Param project_id path int true "Project ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} services.DayView
// @Failure 404 {object} Response
// @Failure 422 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/days/{date} [get]
func (h *BitacoraHandler) Day(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.bitacoraSvc.GetDayView(c.Request.Context(), middleware.GetActor(c), projectID, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// @Summary Draft of the official text
// @Description Composes the BESOP document of a day for review before closing it
// @Tags Bitacora
// @Produce json
// @Param project_id path int true "Project ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} services.Draft
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/days/{date}/draft [get]
func (h *BitacoraHandler) Draft(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	draft, err := h.bitacoraSvc.GetDraft(c.Request.Context(), middleware.GetActor(c), projectID, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, draft)
}

// @Summary Export a day as XLSX
// @Tags Bitacora
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param project_id path int true "Project ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/days/{date}/export.xlsx [get]
func (h *BitacoraHandler) ExportXLSX(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	data, filename, err := h.exportSvc.ExportDayXLSX(c.Request.Context(), middleware.GetActor(c), projectID, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, data)
}
