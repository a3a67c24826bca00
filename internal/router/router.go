package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/examtrail/examtrail-backend/internal/config"
	"github.com/examtrail/examtrail-backend/internal/handler"
	"github.com/examtrail/examtrail-backend/internal/middleware"
	"github.com/examtrail/examtrail-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	StudentPortal *handler.StudentPortalHandler
	Telemetry     *handler.TelemetryHandler
	Proctor       *handler.ProctorHandler
	Audit         *handler.AuditHandler
	WS            *handler.WSHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	verifier *middleware.TokenVerifier,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the telemetry ingest path. One batch per second per IP
	// sustained, with headroom for reconnect bursts.
	ingestLimiter := middleware.NewRateLimiter(cfg.TelemetryRate, time.Minute)

	// ─── 1. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(verifier))
	{
		studentAPI.GET("/assignments", handlers.StudentPortal.ListAssignments)
		studentAPI.GET("/assignments/:assignment_id/paper", handlers.StudentPortal.GetPaper)
		studentAPI.GET("/assignments/:assignment_id/state", handlers.StudentPortal.GetState)
		studentAPI.POST("/assignments/:assignment_id/events",
			ingestLimiter.Middleware(),
			handlers.Telemetry.IngestEvents,
		)
	}

	// ─── 2. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(verifier))
	{
		ws.GET("/student/assignments/:assignment_id/stream", handlers.WS.TelemetryStream)
	}

	// ─── 3. Teacher Group (JWT) ────────────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(verifier))
	{
		teacherAPI.GET("/assignments/:assignment_id/proctor", handlers.Proctor.GetSnapshot)
		teacherAPI.GET("/assignments/:assignment_id/monitor", handlers.Proctor.MonitorSSE)
		teacherAPI.GET("/assignments/:assignment_id/students/:student_id/report", handlers.Proctor.GetStudentReport)
		teacherAPI.GET("/assignments/:assignment_id/students/:student_id/layout", handlers.Audit.RegenerateLayout)
		teacherAPI.POST("/assignments/:assignment_id/convert-answers", handlers.Audit.ConvertAnswers)

		// System monitoring
		teacherAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}
