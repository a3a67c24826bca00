package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/examtrail/examtrail-backend/internal/middleware"
	"github.com/examtrail/examtrail-backend/internal/model"
	"github.com/examtrail/examtrail-backend/internal/service"
	ws "github.com/examtrail/examtrail-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the WebSocket telemetry stream. Clients that hold a
// socket open avoid per-batch HTTP overhead during the exam.
type WSHandler struct {
	telemetryService *service.TelemetryService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(telemetryService *service.TelemetryService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		telemetryService: telemetryService,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// TelemetryStream godoc
// WS /ws/v1/student/assignments/:assignment_id/stream
// Upgrades to WebSocket for real-time telemetry delivery.
func (h *WSHandler) TelemetryStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	studentID := claims.UserID

	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("assignment_id", assignmentID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	for {
		var msg ws.EventRequest
		err := ws.ReadJSON(conn, &msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionEvent:
			h.handleEvent(c, conn, wsLog, assignmentID, studentID, &msg)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			ws.WriteError(conn, "unknown action")
		}
	}
}

// handleEvent validates one streamed event and queues it like an HTTP batch
// of size one.
func (h *WSHandler) handleEvent(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, assignmentID uuid.UUID, studentID int, msg *ws.EventRequest) {
	if msg.EventType == "" {
		ws.WriteError(conn, "event_type is required")
		return
	}

	createdAt, err := time.Parse(time.RFC3339, msg.CreatedAt)
	if err != nil {
		ws.WriteError(conn, "created_at must be RFC3339")
		return
	}

	accepted, err := h.telemetryService.IngestBatch(c.Request.Context(), assignmentID, studentID, []model.IngestEventRequest{{
		Attempt:   msg.Attempt,
		EventType: msg.EventType,
		CreatedAt: createdAt,
		Metadata:  msg.Metadata,
	}})
	if err != nil {
		wsLog.Error().Err(err).Msg("Failed to queue streamed event")
		ws.WriteError(conn, "failed to queue event")
		return
	}

	ws.WriteTyped(conn, ws.AcceptedResponse{Event: ws.EventAccepted, Count: accepted})
}
