package handlers

import (
	"errors"
	"net/http"
	"strconv"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bitacora-api/internal/services"
	"github.com/sjperalta/bitacora-api/pkg/logger"
)

// Response is the envelope of every JSON response
type Response struct {
	Success bool                  `json:"success"`
	Data    interface{}           `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
	Errors  []services.FieldError `json:"errors,omitempty"`
	Warning string                `json:"warning,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondWithWarning(c *gin.Context, status int, data interface{}, warning string) {
	c.JSON(status, Response{Success: true, Data: data, Warning: warning})
}

// respondError maps service errors to HTTP statuses. Access to another
// organization's project answers 404 like a missing one.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, Response{Error: services.ErrValidation.Error(), Errors: verr.Errors})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, Response{Error: err.Error()})
	case errors.Is(err, services.ErrAccessDenied), errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, Response{Error: services.ErrProjectNotFound.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Error: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Error: err.Error()})
	case errors.Is(err, services.ErrAlreadyClosed),
		errors.Is(err, services.ErrDayClosed),
		errors.Is(err, services.ErrEntryLocked):
		c.JSON(http.StatusConflict, Response{Error: err.Error()})
	default:
		logger.FromContext(c.Request.Context()).Error("Request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, Response{Error: "error interno del servidor"})
	}
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, services.NewValidationError(name, "identificador inválido")
	}
	return uint(id), nil
}

func sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
