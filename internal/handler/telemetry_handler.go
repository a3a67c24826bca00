package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examtrail/examtrail-backend/internal/middleware"
	"github.com/examtrail/examtrail-backend/internal/model"
	"github.com/examtrail/examtrail-backend/internal/response"
	"github.com/examtrail/examtrail-backend/internal/service"
	"github.com/examtrail/examtrail-backend/internal/validator"
)

// TelemetryHandler accepts proctoring event batches over HTTP.
type TelemetryHandler struct {
	telemetryService *service.TelemetryService
}

// NewTelemetryHandler creates a new TelemetryHandler.
func NewTelemetryHandler(telemetryService *service.TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{telemetryService: telemetryService}
}

// IngestEvents godoc
// POST /api/v1/student/assignments/:assignment_id/events
// Queues a batch of telemetry events. A malformed timestamp anywhere in the
// batch rejects the whole request.
func (h *TelemetryHandler) IngestEvents(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.IngestEventsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	accepted, err := h.telemetryService.IngestBatch(c.Request.Context(), assignmentID, claims.UserID, req.Events)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"accepted": accepted})
}
