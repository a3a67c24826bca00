package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examtrail/examtrail-backend/internal/middleware"
	"github.com/examtrail/examtrail-backend/internal/response"
	"github.com/examtrail/examtrail-backend/internal/service"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// ProctorHandler serves the live proctoring dashboard: one-shot snapshots,
// per-student reports and the SSE stream.
type ProctorHandler struct {
	proctorService *service.ProctorService
	log            zerolog.Logger
}

// NewProctorHandler creates a new ProctorHandler.
func NewProctorHandler(proctorService *service.ProctorService, log zerolog.Logger) *ProctorHandler {
	return &ProctorHandler{
		proctorService: proctorService,
		log:            log.With().Str("component", "proctor_handler").Logger(),
	}
}

// GetSnapshot godoc
// GET /api/v1/teacher/assignments/:assignment_id/proctor
// Recomputes the full dashboard state from the event log.
func (h *ProctorHandler) GetSnapshot(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	snapshot, err := h.proctorService.GetSnapshot(c.Request.Context(), assignmentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, snapshot)
}

// GetStudentReport godoc
// GET /api/v1/teacher/assignments/:assignment_id/students/:student_id/report
// Per-student drill-down with the raw event trail.
func (h *ProctorHandler) GetStudentReport(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil || studentID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	report, err := h.proctorService.GetStudentReport(c.Request.Context(), assignmentID, studentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// MonitorSSE godoc
// GET /api/v1/teacher/assignments/:assignment_id/monitor
// Streams live session state: an initial snapshot, pub/sub notifications as
// students deliver telemetry, and periodic full refreshes.
func (h *ProctorHandler) MonitorSSE(c *gin.Context) {
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

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	// Initial snapshot
	h.sendSnapshot(c, reqCtx, assignmentID, "snapshot")

	// Subscribe to the assignment's proctor channel
	pubsub := h.proctorService.Subscribe(reqCtx, assignmentID)
	defer pubsub.Close()

	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	// Track whether any telemetry has arrived so we can skip empty refreshes
	hasActivity := false

	h.log.Info().Str("assignment_id", assignmentID.String()).Msg("Teacher attached to live monitor SSE")

	// Pre-allocate a reusable ping payload (never changes)
	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("assignment_id", assignmentID.String()).Msg("Teacher disconnected from live monitor SSE")
			return

		case msg := <-ch:
			// Forward raw JSON directly — no deserialization needed
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

			hasActivity = true

		case <-refreshTicker.C:
			if !hasActivity {
				continue // no point recomputing if nothing has arrived
			}
			h.sendSnapshot(c, reqCtx, assignmentID, "refresh")

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendSnapshot recomputes the dashboard and writes one SSE event. A scoped
// timeout prevents a slow query from stalling the SSE loop.
func (h *ProctorHandler) sendSnapshot(c *gin.Context, parentCtx context.Context, assignmentID uuid.UUID, eventType string) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	snapshot, err := h.proctorService.GetSnapshot(ctx, assignmentID)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to build proctor snapshot")
		return
	}

	c.SSEvent("message", map[string]interface{}{
		"type": eventType,
		"data": snapshot,
	})
	c.Writer.Flush()
}
