package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/middleware"
	"github.com/edusync/edusync-portal/internal/quiz"
	"github.com/edusync/edusync-portal/internal/repository"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/edusync/edusync-portal/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// failure is an error translated for the envelope.
type failure struct {
	status  int
	code    response.ErrCode
	message string
}

// classify maps domain, store and upstream errors to a status and code.
// Unknown errors come back with ok=false.
func classify(err error) (f failure, ok bool) {
	var verr *quiz.ValidationError
	if errors.As(err, &verr) {
		return failure{http.StatusUnprocessableEntity, response.ErrInvalidQuestion, verr.Message}, true
	}

	var apiErr *edusync.APIError
	if errors.As(err, &apiErr) {
		return classifyUpstream(apiErr), true
	}

	switch {
	// builder
	case errors.Is(err, quiz.ErrLastQuestion):
		return failure{status: http.StatusConflict, code: response.ErrLastQuestion}, true
	case errors.Is(err, quiz.ErrTooManyOptions), errors.Is(err, quiz.ErrTooFewOptions):
		return failure{http.StatusConflict, response.ErrOptionLimit, err.Error()}, true
	case errors.Is(err, quiz.ErrOptionsFixed):
		return failure{status: http.StatusConflict, code: response.ErrOptionsFixed}, true
	case errors.Is(err, quiz.ErrIndexOutOfRange):
		return failure{status: http.StatusBadRequest, code: response.ErrIndexOutOfRange}, true
	case errors.Is(err, quiz.ErrUnknownType):
		return failure{http.StatusBadRequest, response.ErrValidation, err.Error()}, true

	// attempts
	case errors.Is(err, quiz.ErrNotAnswering), errors.Is(err, quiz.ErrNotSubmitting):
		return failure{status: http.StatusConflict, code: response.ErrAttemptClosed}, true
	case errors.Is(err, quiz.ErrUnknownKey):
		return failure{status: http.StatusBadRequest, code: response.ErrUnknownQuestionKey}, true
	case errors.Is(err, service.ErrSubmitInProgress):
		return failure{status: http.StatusConflict, code: response.ErrSubmitInProgress}, true

	// stores
	case errors.Is(err, repository.ErrDraftNotFound):
		return failure{status: http.StatusNotFound, code: response.ErrDraftNotFound}, true
	case errors.Is(err, repository.ErrAttemptNotFound):
		return failure{status: http.StatusNotFound, code: response.ErrAttemptNotFound}, true
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return failure{status: http.StatusConflict, code: response.ErrDraftConflict}, true

	// authorization and workflow
	case errors.Is(err, service.ErrAccessDenied):
		return failure{status: http.StatusForbidden, code: response.ErrForbidden}, true
	case errors.Is(err, service.ErrInstructorOnly):
		return failure{status: http.StatusForbidden, code: response.ErrInstructorOnly}, true
	case errors.Is(err, service.ErrNotOwner):
		return failure{status: http.StatusForbidden, code: response.ErrNotCourseOwner}, true
	case errors.Is(err, service.ErrAssessmentMismatch):
		return failure{status: http.StatusBadRequest, code: response.ErrAssessmentMismatch}, true
	case errors.Is(err, service.ErrConfirmationRequired):
		return failure{status: http.StatusBadRequest, code: response.ErrConfirmationRequired}, true
	case errors.Is(err, service.ErrPasswordMismatch):
		return failure{status: http.StatusBadRequest, code: response.ErrPasswordMismatch}, true
	case errors.Is(err, service.ErrInvalidCredentials):
		return failure{status: http.StatusUnauthorized, code: response.ErrInvalidCredentials}, true
	case errors.Is(err, service.ErrSessionInvalidated):
		return failure{status: http.StatusUnauthorized, code: response.ErrSessionInvalidated}, true
	case errors.Is(err, service.ErrCorruptAssessment):
		return failure{http.StatusBadGateway, response.ErrUpstream, "The server returned an unreadable assessment."}, true
	case errors.Is(err, session.ErrInvalidUser):
		return failure{http.StatusBadGateway, response.ErrUpstream, "The server returned an incomplete user record."}, true

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return failure{status: http.StatusServiceUnavailable, code: response.ErrUpstreamUnavailable}, true
	}
	return failure{}, false
}

func classifyUpstream(e *edusync.APIError) failure {
	if e.Transport() {
		return failure{http.StatusBadGateway, response.ErrUpstreamUnavailable, e.Message}
	}
	switch e.StatusCode {
	case http.StatusBadRequest:
		return failure{http.StatusBadRequest, response.ErrValidation, e.Message}
	case http.StatusUnauthorized:
		return failure{http.StatusUnauthorized, response.ErrSessionInvalidated, e.Message}
	case http.StatusForbidden:
		return failure{http.StatusForbidden, response.ErrForbidden, e.Message}
	case http.StatusNotFound:
		return failure{http.StatusNotFound, response.ErrNotFound, e.Message}
	case http.StatusConflict:
		return failure{http.StatusConflict, response.ErrConflict, e.Message}
	default:
		return failure{http.StatusBadGateway, response.ErrUpstream, e.Message}
	}
}

// fail writes err through the envelope, logging anything unexpected.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	f, ok := classify(err)
	if !ok {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled request error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.FailWithMessage(c, f.status, f.code, f.message)
}

// sessionOrFail returns the caller's session context, writing a 401 when the
// route was wired without RequireSession.
func sessionOrFail(c *gin.Context) (*session.Context, bool) {
	sc := middleware.GetSession(c)
	if sc == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	return sc, true
}

// indexParam parses a non-negative integer path parameter.
func indexParam(c *gin.Context, name string) (int, bool) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil || i < 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return i, true
}

// confirmed reports whether a destructive request carries ?confirm=true.
func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}
