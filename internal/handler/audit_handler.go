package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examtrail/examtrail-backend/internal/model"
	"github.com/examtrail/examtrail-backend/internal/response"
	"github.com/examtrail/examtrail-backend/internal/service"
	"github.com/examtrail/examtrail-backend/internal/shuffle"
	"github.com/examtrail/examtrail-backend/internal/validator"
)

// AuditHandler serves post-exam verification: regenerating the exact layout a
// student saw and converting presented answers back to canonical labels.
type AuditHandler struct {
	presentationService *service.PresentationService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(presentationService *service.PresentationService) *AuditHandler {
	return &AuditHandler{presentationService: presentationService}
}

// RegenerateLayout godoc
// GET /api/v1/teacher/assignments/:assignment_id/students/:student_id/layout
// Rebuilds the presented layout from the stored attempt seed.
func (h *AuditHandler) RegenerateLayout(c *gin.Context) {
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

	result, err := h.presentationService.RegenerateLayout(c.Request.Context(), assignmentID, studentID)
	if err != nil {
		if errors.Is(err, service.ErrNoAttempt) {
			response.Fail(c, http.StatusNotFound, response.ErrNoAttempt)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ConvertAnswers godoc
// POST /api/v1/teacher/assignments/:assignment_id/convert-answers
// Maps presented-label answers back to canonical labels for grading. Any
// unknown label fails the whole conversion.
func (h *AuditHandler) ConvertAnswers(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ConvertAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	canonical, err := h.presentationService.ConvertAnswers(c.Request.Context(), assignmentID, req.StudentID, req.Answers)
	if err != nil {
		if errors.Is(err, service.ErrNoAttempt) {
			response.Fail(c, http.StatusNotFound, response.ErrNoAttempt)
			return
		}
		if errors.Is(err, shuffle.ErrUnknownLabel) {
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownLabel)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answers": canonical})
}
