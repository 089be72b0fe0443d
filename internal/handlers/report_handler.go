package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/hazardscope/api/internal/errors"
	"github.com/hazardscope/api/internal/middleware"
	"github.com/hazardscope/api/internal/services"
)

// ReportHandler handles climate-hazard report HTTP requests.
type ReportHandler struct {
	service services.ReportService
}

// NewReportHandler creates a new ReportHandler instance.
func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// AtPointRequest represents the query parameters for the at-point endpoint.
// Lat and Lng are pointers so that a genuinely absent parameter fails
// required-validation while the zero coordinate (equator, prime meridian)
// binds as present. Region is an optional region id used only for the
// static reference-table column.
type AtPointRequest struct {
	Lat    *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng    *float64 `form:"lng" binding:"required,min=-180,max=180"`
	Region string   `form:"region" binding:"omitempty,max=16"`
}

// AtPoint handles GET /api/v1/reports/at-point.
// It builds the full report table for the given coordinate. Upstream data
// source failures do not fail the request: affected fields come back as
// explicit not-available markers.
func (h *ReportHandler) AtPoint(c *gin.Context) {
	log := middleware.GetLogger(c)

	// Bind and validate query parameters
	var req AtPointRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	lat, lng := *req.Lat, *req.Lng

	if log != nil {
		log.Info("Processing report request", map[string]interface{}{
			"lat":    lat,
			"lng":    lng,
			"region": req.Region,
		})
	}

	// Call service layer
	result, err := h.service.ReportAtPoint(c.Request.Context(), lat, lng, req.Region)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCoordinates) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		// The service degrades upstream failures internally; anything else
		// escaping here is unexpected.
		apierrors.InternalServerError(c, "Failed to build report", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
