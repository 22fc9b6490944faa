package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrInstructorOnly     ErrCode = "INSTRUCTOR_ACCESS_ONLY"
	ErrNotCourseOwner     ErrCode = "NOT_COURSE_OWNER"
	ErrAssessmentMismatch ErrCode = "ASSESSMENT_NOT_IN_COURSE"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation           ErrCode = "VALIDATION_ERROR"
	ErrInvalidID            ErrCode = "INVALID_ID"
	ErrInvalidPayload       ErrCode = "INVALID_PAYLOAD"
	ErrConfirmationRequired ErrCode = "CONFIRMATION_REQUIRED"
	ErrPasswordMismatch     ErrCode = "PASSWORD_MISMATCH"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Authoring ─────────────────────────────────────────────────────
	ErrDraftNotFound   ErrCode = "DRAFT_NOT_FOUND"
	ErrDraftConflict   ErrCode = "DRAFT_CONFLICT"
	ErrLastQuestion    ErrCode = "LAST_QUESTION"
	ErrOptionLimit     ErrCode = "OPTION_LIMIT"
	ErrOptionsFixed    ErrCode = "OPTIONS_FIXED"
	ErrIndexOutOfRange ErrCode = "INDEX_OUT_OF_RANGE"
	ErrInvalidQuestion ErrCode = "INVALID_QUESTION_SET"

	// ─── Attempts ──────────────────────────────────────────────────────
	ErrAttemptNotFound    ErrCode = "ATTEMPT_NOT_FOUND"
	ErrAttemptClosed      ErrCode = "ATTEMPT_CLOSED"
	ErrIncompleteAttempt  ErrCode = "INCOMPLETE_ATTEMPT"
	ErrSubmissionFailed   ErrCode = "SUBMISSION_FAILED"
	ErrSubmitInProgress   ErrCode = "SUBMIT_IN_PROGRESS"
	ErrUnknownQuestionKey ErrCode = "UNKNOWN_QUESTION_KEY"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired ErrCode = "FILE_REQUIRED"
	ErrFileTooLarge ErrCode = "FILE_TOO_LARGE"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrUpstream            ErrCode = "UPSTREAM_ERROR"
	ErrUpstreamUnavailable ErrCode = "UPSTREAM_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrInstructorOnly:
		return "This resource is restricted to instructors."
	case ErrNotCourseOwner:
		return "Access Denied: You do not own this course."
	case ErrAssessmentMismatch:
		return "This assessment does not belong to the selected course."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrConfirmationRequired:
		return "This action must be confirmed."
	case ErrPasswordMismatch:
		return "Passwords do not match."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Authoring ─────────────────────────────────────────────────────
	case ErrDraftNotFound:
		return "Draft not found or expired."
	case ErrDraftConflict:
		return "The draft was changed concurrently. Please retry."
	case ErrLastQuestion:
		return "An assessment must keep at least one question."
	case ErrOptionLimit:
		return "Multiple-choice questions must have between 2 and 6 options."
	case ErrOptionsFixed:
		return "True/false options cannot be edited."
	case ErrIndexOutOfRange:
		return "Question or option index is out of range."
	case ErrInvalidQuestion:
		return "The assessment is not ready to be saved."

	// ─── Attempts ──────────────────────────────────────────────────────
	case ErrAttemptNotFound:
		return "Attempt not found or expired."
	case ErrAttemptClosed:
		return "This attempt is no longer accepting answers."
	case ErrIncompleteAttempt:
		return "Please answer all questions before submitting."
	case ErrSubmissionFailed:
		return "Failed to submit result."
	case ErrSubmitInProgress:
		return "A submission for this attempt is already in progress."
	case ErrUnknownQuestionKey:
		return "No such question in this attempt."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Upstream ──────────────────────────────────────────────────────
	case ErrUpstream:
		return "The EduSync service rejected the request."
	case ErrUpstreamUnavailable:
		return "The EduSync service is unavailable."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
