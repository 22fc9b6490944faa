package handler

import (
	"errors"
	"net/http"

	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/quiz"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AttemptHandler handles quiz attempts over REST.
type AttemptHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		log:      log.With().Str("component", "attempt_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/assessments/:id/attempts
// Fetches the assessment and returns its questions without the answer key.
func (h *AttemptHandler) Start(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	v, err := h.attempts.Start(c.Request.Context(), sc, c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, v)
}

// Get godoc
// GET /api/v1/attempts/:id
func (h *AttemptHandler) Get(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	v, err := h.attempts.Get(c.Request.Context(), sc, c.Param("id"))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

// Answer godoc
// PUT /api/v1/attempts/:id/answers
func (h *AttemptHandler) Answer(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	v, err := h.attempts.Answer(c.Request.Context(), sc, c.Param("id"), req.QuestionKey, req.Value)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

// Submit godoc
// POST /api/v1/attempts/:id/submit
// On a failed save the graded attempt is still returned next to the error.
func (h *AttemptHandler) Submit(c *gin.Context) {
	sc, ok := sessionOrFail(c)
	if !ok {
		return
	}
	v, err := h.attempts.Submit(c.Request.Context(), sc, c.Param("id"))
	if err != nil {
		h.submitFailed(c, v, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

func (h *AttemptHandler) submitFailed(c *gin.Context, v *model.AttemptView, err error) {
	var verr *quiz.ValidationError
	if errors.As(err, &verr) {
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrIncompleteAttempt, verr.Message)
		return
	}
	if v != nil {
		f, ok := classify(err)
		if !ok {
			f = failure{status: http.StatusBadGateway}
		}
		response.FailWithData(c, f.status, response.ErrSubmissionFailed, v.Error, v)
		return
	}
	fail(c, h.log, err)
}
