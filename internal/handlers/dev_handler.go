package handlers

import (
	"net/http"

	"fintrack/internal/dto"
	"fintrack/internal/errors"
	"fintrack/internal/services"

	"github.com/labstack/echo/v4"
)

// DevHandler handles development-only endpoints
// These endpoints should only be registered in development environments
type DevHandler struct {
	sampleDataService services.SampleDataServiceInterface
}

// NewDevHandler creates a new development handler
func NewDevHandler(sampleDataService services.SampleDataServiceInterface) *DevHandler {
	return &DevHandler{
		sampleDataService: sampleDataService,
	}
}

// GenerateSampleData seeds realistic demo entries for the authenticated user
//
// Method: POST /api/v1/dev/sample-data
// Environment: Development only
//
// Body parameters:
//   - days: Number of days of history to generate (default: 30, max: 365)
func (h *DevHandler) GenerateSampleData(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.SampleDataRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	days := req.Days
	if days == 0 {
		days = services.DefaultSampleDays
	}

	created, err := h.sampleDataService.Generate(userID, days)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Sample data generated successfully",
		Meta: map[string]interface{}{
			"entries_created": len(created),
			"days":            days,
		},
	})
}
