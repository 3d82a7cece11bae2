package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on v1. protect runs before every route except
// the health check (authentication, then actor resolution).
func RegisterRoutes(v1 *gin.RouterGroup, h *Handlers, protect ...gin.HandlerFunc) {
	// Health check (public)
	v1.GET("/health", h.Health.Index)

	protected := v1.Group("")
	protected.Use(protect...)
	{
		protected.GET("/jobs/status", h.Health.Jobs)

		bitacora := protected.Group("/projects/:project_id/bitacora")
		{
			bitacora.GET("/summary", h.Bitacora.Summary)
			bitacora.GET("/closures", h.Closure.Index)

			// Entries
			bitacora.POST("/entries", h.Entry.Create)
			bitacora.PUT("/entries/:entry_id", h.Entry.Update)
			bitacora.DELETE("/entries/:entry_id", h.Entry.Delete)
			bitacora.POST("/events", h.Entry.RecordEvent)

			// Days
			day := bitacora.Group("/days/:date")
			{
				day.GET("", h.Bitacora.Day)
				day.GET("/draft", h.Bitacora.Draft)
				day.GET("/export.xlsx", h.Bitacora.ExportXLSX)
				day.POST("/close", h.Closure.Close)
				day.GET("/closure", h.Closure.Show)
				day.POST("/closure/verify_pin", h.Closure.VerifyPin)
				day.GET("/closure/verify", h.Closure.Verify)
				day.GET("/closure/pdf", h.Closure.PDF)
			}
		}
	}
}
