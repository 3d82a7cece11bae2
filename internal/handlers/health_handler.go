package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bitacora-api/internal/services"
)

// Pinger checks the database connection
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	jobService *services.JobService
	db         Pinger
}

func NewHealthHandler(jobSvc *services.JobService, db Pinger) *HealthHandler {
	return &HealthHandler{
		jobService: jobSvc,
		db:         db,
	}
}

// @Summary Health Check
// @Description Checks if the API and its database are up
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":  "ok",
		"service": "bitacora-api",
		"version": "1.0.0",
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		} else {
			body["database"] = "ok"
		}
	}
	c.JSON(status, body)
}

// @Summary Get background job status
// @Description Statistics about background jobs (active, finished, failed, queue length, last runs)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *HealthHandler) Jobs(c *gin.Context) {
	respondOK(c, http.StatusOK, h.jobService.GetStatus())
}
