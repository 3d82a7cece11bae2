package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bitacora-api/internal/middleware"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/sjperalta/bitacora-api/internal/services"
)

type ClosureHandler struct {
	closureSvc *services.ClosureService
	exportSvc  *services.ExportService
}

func NewClosureHandler(closureSvc *services.ClosureService, exportSvc *services.ExportService) *ClosureHandler {
	return &ClosureHandler{
		closureSvc: closureSvc,
		exportSvc:  exportSvc,
	}
}

// CloseDayRequest carries the reviewed official text. Accepts {"closure": {...}} or the flat object.
type CloseDayRequest struct {
	// Sealed as submitted. Length (50..5000) is counted after trimming, in NFC form.
	OfficialContent string  `json:"official_content"`
	Pin             *string `json:"pin" example:"1234"`
}

// VerifyPinRequest carries the PIN to check
type VerifyPinRequest struct {
	Pin string `json:"pin" example:"1234"`
}

// PaginatedClosures is the page of sealed days returned by Index
type PaginatedClosures struct {
	Closures   []models.DayClosureResponse `json:"closures"`
	Pagination Pagination                  `json:"pagination"`
}

// Pagination describes the page returned
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// @Summary Close a day
// @Description Seals the day with the reviewed official text and locks its entries.
// @Description When locking cannot finish the day is still closed and a warning is returned.
// @Tags Closures
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param request body CloseDayRequest true "Closure"
// @Success 201 {object} services.ClosureResult
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/days/{date}/close [post]
func (h *ClosureHandler) Close(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req CloseDayRequest
	if err := bindBody(c, "closure", &req); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.closureSvc.CloseDay(c.Request.Context(), middleware.GetActor(c), projectID, services.CloseDayInput{
		Date:    c.Param("date"),
		Content: req.OfficialContent,
		Pin:     req.Pin,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if result.LockIncomplete {
		respondWithWarning(c, http.StatusCreated, result, result.Warning)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

// @Summary Show the closure of a day
// @Tags Closures
// @Produce json
// @Param project_id path int true "Project ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} models.DayClosureResponse
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/days/{date}/closure [get]
func (h *ClosureHandler) Show(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	closure, err := h.closureSvc.GetClosure(c.Request.Context(), middleware.GetActor(c), projectID, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, closure.ToResponse(true))
}

// @Summary Verify the closure PIN
// @Tags Closures
// @Accept json
// @Produce json
// @Param project_id path int true "Project ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param request body VerifyPinRequest true "PIN"
// @Success 200 {object} map[string]bool
// @Failure 422 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/days/{date}/closure/verify_pin [post]
func (h *ClosureHandler) VerifyPin(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req VerifyPinRequest
	if err := bindBody(c, "closure", &req); err != nil {
		respondError(c, err)
		return
	}
	valid, err := h.closureSvc.VerifyClosurePin(c.Request.Context(), middleware.GetActor(c), projectID, c.Param("date"), req.Pin)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"valid": valid})
}

// @Summary Verify closure integrity
// @Description Recomputes the content hash and reports whether every entry of the day is locked
// @Tags Closures
// @Produce json
// @Param project_id path int true "Project ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} services.IntegrityReport
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/days/{date}/closure/verify [get]
func (h *ClosureHandler) Verify(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := h.closureSvc.VerifyIntegrity(c.Request.Context(), middleware.GetActor(c), projectID, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, report)
}

// @Summary Official PDF of a closed day
// @Tags Closures
// @Produce application/pdf
// @Param project_id path int true "Project ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/days/{date}/closure/pdf [get]
func (h *ClosureHandler) PDF(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	data, filename, err := h.exportSvc.GetClosurePDF(c.Request.Context(), middleware.GetActor(c), projectID, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, "application/pdf", filename, data)
}

// @Summary List closed days
// @Tags Closures
// @Produce json
// @Param project_id path int true "Project ID"
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} PaginatedClosures
// @Security BearerAuth
// @Router /projects/{project_id}/bitacora/closures [get]
func (h *ClosureHandler) Index(c *gin.Context) {
	projectID, err := idParam(c, "project_id")
	if err != nil {
		respondError(c, err)
		return
	}
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 && perPage <= 100 {
		query.PerPage = perPage
	}

	closures, total, err := h.closureSvc.ListClosures(c.Request.Context(), middleware.GetActor(c), projectID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := PaginatedClosures{
		Closures: make([]models.DayClosureResponse, 0, len(closures)),
		Pagination: Pagination{
			Page:       query.Page,
			PerPage:    query.PerPage,
			TotalItems: total,
			TotalPages: int((total + int64(query.PerPage) - 1) / int64(query.PerPage)),
		},
	}
	for i := range closures {
		resp.Closures = append(resp.Closures, closures[i].ToResponse(false))
	}
	respondOK(c, http.StatusOK, resp)
}
