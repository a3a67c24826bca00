package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examtrail/examtrail-backend/internal/middleware"
	"github.com/examtrail/examtrail-backend/internal/model"
	"github.com/examtrail/examtrail-backend/internal/repository"
	"github.com/examtrail/examtrail-backend/internal/response"
	"github.com/examtrail/examtrail-backend/internal/service"
)

// StudentPortalHandler handles student-facing endpoints (assignment list,
// presented paper, attempt state).
type StudentPortalHandler struct {
	presentationService *service.PresentationService
	assignmentRepo      *repository.AssignmentRepository
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	presentationService *service.PresentationService,
	assignmentRepo *repository.AssignmentRepository,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		presentationService: presentationService,
		assignmentRepo:      assignmentRepo,
	}
}

// ListAssignments godoc
// GET /api/v1/student/assignments
// Returns the published assignments a student can open.
func (h *StudentPortalHandler) ListAssignments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assignments, err := h.assignmentRepo.ListPublished(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if assignments == nil {
		assignments = []model.Assignment{}
	}

	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// GetPaper godoc
// GET /api/v1/student/assignments/:assignment_id/paper
// Derives and returns the student's personalized question layout. The same
// student always receives the same layout for the same assignment.
func (h *StudentPortalHandler) GetPaper(c *gin.Context) {
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

	paper, err := h.presentationService.GetPresentedPaper(c.Request.Context(), assignmentID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotPublished) {
			response.Fail(c, http.StatusForbidden, response.ErrAssignmentNotPublished)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// GetState godoc
// GET /api/v1/student/assignments/:assignment_id/state
// Returns the remaining time for the student's latest attempt. Covers page
// reloads so the frontend can restore the countdown.
func (h *StudentPortalHandler) GetState(c *gin.Context) {
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

	state, err := h.presentationService.GetAttemptState(c.Request.Context(), assignmentID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoAttempt) {
			response.Fail(c, http.StatusNotFound, response.ErrNoAttempt)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, state)
}
